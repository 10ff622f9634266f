package services

import (
	"buildwatch/internal/itch"
	"buildwatch/internal/models"
	"buildwatch/internal/storage"
	"buildwatch/internal/structures"
	"buildwatch/internal/testutil"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFileStore(filepath.Join(t.TempDir(), "db.json"), &testutil.MockLogger{}, &testutil.MockMetrics{})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureDefaults(s, []string{"static-admin-token"}))
	return s
}

func testAuthConfig() *structures.Config {
	return &structures.Config{
		Auth: structures.AuthConfig{
			JWTSecret:    "0123456789abcdef0123",
			Issuer:       "buildwatch",
			TokenTTL:     time.Hour,
			PasswordCost: 4,
			AdminUsers:   []string{"Boss"},
		},
	}
}

type stubReconciler struct {
	calls int
	fn    func(titleID string) (models.ReconcileResult, error)
}

func (s *stubReconciler) Reconcile(_ context.Context, titleID string) (models.ReconcileResult, error) {
	s.calls++
	if s.fn == nil {
		return models.ReconcileResult{}, nil
	}
	return s.fn(titleID)
}

type stubPlatform struct {
	url string
	err error
}

func (s *stubPlatform) FetchUploads(context.Context, string) ([]itch.Upload, error) {
	return nil, nil
}

func (s *stubPlatform) DownloadURL(context.Context, string) (string, error) {
	return s.url, s.err
}
