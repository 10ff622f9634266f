package watcher

import (
	"buildwatch/internal/itch"
	"buildwatch/internal/models"
	"buildwatch/internal/storage"
	"buildwatch/internal/testutil"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu      sync.Mutex
	uploads map[string][]itch.Upload
	err     error
}

func (f *fakePlatform) set(titleID string, uploads ...itch.Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string][]itch.Upload{}
	}
	f.uploads[titleID] = uploads
}

func (f *fakePlatform) FetchUploads(_ context.Context, titleID string) ([]itch.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	// hand out a copy, the reconciler sorts in place
	return append([]itch.Upload(nil), f.uploads[titleID]...), nil
}

func (f *fakePlatform) DownloadURL(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

type announceCall struct {
	TitleID, VersionID, PatchNotes string
}

type fakeAnnouncer struct {
	mu    sync.Mutex
	calls []announceCall
	err   error
}

func (f *fakeAnnouncer) Announce(titleID, versionID, patchNotes string) (*models.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, announceCall{titleID, versionID, patchNotes})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Announcement{ID: "a"}, nil
}

type reconcilerFixture struct {
	rec       *Reconciler
	store     storage.Store
	platform  *fakePlatform
	announcer *fakeAnnouncer
	metrics   *testutil.MockMetrics
	logger    *testutil.MockLogger
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "db.json"), logger, metrics)
	require.NoError(t, err)

	f := &reconcilerFixture{
		store:     store,
		platform:  &fakePlatform{},
		announcer: &fakeAnnouncer{},
		metrics:   metrics,
		logger:    logger,
	}
	f.rec = NewReconciler(store, f.platform, f.announcer, metrics, logger)
	f.rec.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func (f *reconcilerFixture) entry(t *testing.T, titleID string) *models.TitleEntry {
	t.Helper()
	titles := models.Titles{}
	_, err := f.store.Get(storage.KeyTitles, &titles)
	require.NoError(t, err)
	return titles[titleID]
}

func upload(id, updatedAt string) itch.Upload {
	return itch.Upload{ID: itch.UploadID(id), UpdatedAt: updatedAt}
}

func versionIDs(entry *models.TitleEntry) []string {
	ids := make([]string, 0, len(entry.Versions))
	for _, v := range entry.Versions {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestReconcile_FirstPollRecordsAllNewestFirst(t *testing.T) {
	f := newReconcilerFixture(t)
	f.platform.set("g1", upload("a", "2024-01-01 10:00:00"), upload("b", "2024-01-02 10:00:00"))

	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, res.NewVersionDetected)
	assert.Equal(t, 2, res.Added)
	require.NotNil(t, res.Record)
	assert.Equal(t, "b", res.Record.ID)

	entry := f.entry(t, "g1")
	require.NotNil(t, entry)
	assert.Equal(t, []string{"b", "a"}, versionIDs(entry))
	assert.Equal(t, "b", entry.CurrentVersion())
	assert.Equal(t, "New build uploaded at 2024-01-02 10:00:00", *entry.PatchNotes)
	require.NotNil(t, entry.Versions[0].UploadedAt)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), *entry.Versions[0].UploadedAt)

	require.Len(t, f.announcer.calls, 1)
	assert.Equal(t, announceCall{"g1", "b", "New build uploaded at 2024-01-02 10:00:00"}, f.announcer.calls[0])
	assert.Equal(t, 1, f.metrics.UpdatesDetected["g1"])
	assert.Equal(t, 2, f.metrics.VersionsTotal["g1"])
}

func TestReconcile_IsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	f.platform.set("g1", upload("a", "2024-01-01 10:00:00"), upload("b", "2024-01-02 10:00:00"))

	_, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	writes := f.metrics.PersistCount()

	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, res.NewVersionDetected)
	assert.Zero(t, res.Added)
	assert.Equal(t, writes, f.metrics.PersistCount())
	assert.Len(t, f.announcer.calls, 1)
	assert.Len(t, f.entry(t, "g1").Versions, 2)
}

func TestReconcile_BurstAddsEverythingButAnnouncesNewestOnly(t *testing.T) {
	f := newReconcilerFixture(t)
	f.platform.set("g1", upload("a", "2024-01-01 10:00:00"))
	_, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)

	f.platform.set("g1",
		upload("a", "2024-01-01 10:00:00"),
		upload("c", "2024-01-03 10:00:00"),
		upload("b", "2024-01-02 10:00:00"),
	)
	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, res.NewVersionDetected)
	assert.Equal(t, 2, res.Added)

	entry := f.entry(t, "g1")
	assert.Equal(t, []string{"c", "b", "a"}, versionIDs(entry))
	assert.Equal(t, "c", entry.CurrentVersion())

	require.Len(t, f.announcer.calls, 2)
	assert.Equal(t, "c", f.announcer.calls[1].VersionID)
}

func TestReconcile_NeverRewritesExistingRecord(t *testing.T) {
	f := newReconcilerFixture(t)
	titles := models.Titles{}
	titles.Entry("g1").Prepend(models.VersionRecord{ID: "a", PatchNotes: "hand written"})
	require.NoError(t, f.store.Set(storage.KeyTitles, titles))

	f.platform.set("g1", upload("a", "2024-01-01 10:00:00"))
	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, res.NewVersionDetected)
	assert.Zero(t, res.Added)

	entry := f.entry(t, "g1")
	require.Len(t, entry.Versions, 1)
	assert.Equal(t, "hand written", entry.Versions[0].PatchNotes)
	assert.Equal(t, "a", entry.CurrentVersion())
}

func TestReconcile_EmptyListLeavesStoreAlone(t *testing.T) {
	f := newReconcilerFixture(t)
	writes := f.metrics.PersistCount()

	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, res.NewVersionDetected)
	assert.Equal(t, writes, f.metrics.PersistCount())
	assert.Nil(t, f.entry(t, "g1"))
	assert.Empty(t, f.announcer.calls)
}

func TestReconcile_FetchErrorLeavesStoreAlone(t *testing.T) {
	f := newReconcilerFixture(t)
	f.platform.err = errors.New("connection refused")
	writes := f.metrics.PersistCount()

	_, err := f.rec.Reconcile(context.Background(), "g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, writes, f.metrics.PersistCount())
}

func TestReconcile_AnnouncementFailureKeepsVersion(t *testing.T) {
	f := newReconcilerFixture(t)
	f.announcer.err = errors.New("template store broken")
	f.platform.set("g1", upload("x", "2024-01-01 10:00:00"))

	res, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, res.NewVersionDetected)
	assert.Equal(t, "x", f.entry(t, "g1").CurrentVersion())
	assert.Equal(t, 1, f.metrics.AnnouncementFailures)
	assert.True(t, f.logger.HasEntry("error", "template store broken"))
}

func TestReconcile_KeepsUploadMeta(t *testing.T) {
	f := newReconcilerFixture(t)
	u := upload("m", "2024-01-01 10:00:00")
	u.URL = "https://example.com/m.zip"
	u.Raw = []byte(`{"id":"m","filename":"m.zip"}`)
	f.platform.set("g1", u)

	_, err := f.rec.Reconcile(context.Background(), "g1")
	require.NoError(t, err)

	rec := f.entry(t, "g1").Versions[0]
	require.NotNil(t, rec.DownloadURL)
	assert.Equal(t, "https://example.com/m.zip", *rec.DownloadURL)
	assert.JSONEq(t, `{"id":"m","filename":"m.zip"}`, string(rec.RawMeta))
}

func TestSortNewestFirst(t *testing.T) {
	uploads := []itch.Upload{
		upload("old", "2023-01-01 00:00:00"),
		upload("broken", "not a date"),
		upload("new", "2024-01-01T00:00:00Z"),
		upload("mid", "2023-06-01 00:00:00"),
	}
	sortNewestFirst(uploads)

	ids := make([]string, 0, len(uploads))
	for _, u := range uploads {
		ids = append(ids, u.ID.String())
	}
	assert.Equal(t, []string{"new", "mid", "old", "broken"}, ids)
}
