package controllers

import (
	"buildwatch/internal/itch"
	"buildwatch/internal/models"
	"buildwatch/internal/services"
	"buildwatch/internal/storage"
	"buildwatch/internal/structures"
	"buildwatch/internal/testutil"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// --- local fakes (scoped to controller tests) ---

type fakePlatform struct {
	url string
	err error
}

func (f *fakePlatform) FetchUploads(context.Context, string) ([]itch.Upload, error) { return nil, nil }
func (f *fakePlatform) DownloadURL(context.Context, string) (string, error)       { return f.url, f.err }

type fakeReconciler struct{}

func (f *fakeReconciler) Reconcile(context.Context, string) (models.ReconcileResult, error) {
	return models.ReconcileResult{}, nil
}

type fakeScheduler struct {
	status models.WatcherStatus
}

func (f *fakeScheduler) Start([]string, time.Duration)  {}
func (f *fakeScheduler) Stop()                          {}
func (f *fakeScheduler) RunCycle(context.Context)       {}
func (f *fakeScheduler) Status() models.WatcherStatus { return f.status }

// --- fixture over real services and a temp store ---

type fixture struct {
	store         storage.Store
	cache         *testutil.MockCache
	logger        *testutil.MockLogger
	limiter       *testutil.MockRateLimiter
	platform      *fakePlatform
	tokens        *services.TokenManager
	titles        services.TitleServiceInterface
	announcements services.AnnouncementServiceInterface
	templates     services.TemplateServiceInterface
	users         services.UserServiceInterface
	admins        services.AdminServiceInterface
	backups       services.BackupServiceInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := &testutil.MockLogger{}
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "db.json"), logger, &testutil.MockMetrics{})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureDefaults(store, []string{"static-admin-token"}))

	conf := &structures.Config{Auth: structures.AuthConfig{
		JWTSecret:    "controller-test-secret",
		Issuer:       "buildwatch",
		TokenTTL:     time.Hour,
		PasswordCost: 4,
	}}
	compressor, err := storage.NewZstdCompressor()
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		cache:    testutil.NewMockCache(),
		logger:   logger,
		limiter:  &testutil.MockRateLimiter{Limit: 3},
		platform: &fakePlatform{},
		tokens:   services.NewTokenManager(conf),
	}
	f.templates = services.NewTemplateService(store, f.cache)
	f.announcements = services.NewAnnouncementService(store, f.templates, f.cache)
	f.titles = services.NewTitleService(conf, store, &fakeReconciler{}, f.platform, logger)
	f.users = services.NewUserService(conf, store, f.tokens, f.limiter, logger)
	f.admins = services.NewAdminService(store, f.tokens, logger)
	f.backups = services.NewBackupService(store, compressor, f.cache, logger)
	return f
}

// --- request helpers ---

func jsonRequest(method, target, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func servicesReport(version string) services.VersionReport {
	return services.VersionReport{Version: version}
}

func servicesAnnouncement(title, content string) services.AnnouncementInput {
	return services.AnnouncementInput{Title: title, Content: content}
}

func servicesCredentials(username, password string) services.Credentials {
	return services.Credentials{Username: username, Password: password}
}
