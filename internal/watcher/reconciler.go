// Package watcher polls the distribution platform and folds new uploads into
// each title's version history.
package watcher

import (
	"buildwatch/internal/itch"
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"context"
	"fmt"
	"sort"
	"time"
)

// Announcer publishes the announcement for a freshly detected version.
type Announcer interface {
	Announce(titleID, versionID, patchNotes string) (*models.Announcement, error)
}

type Reconciler struct {
	store     storage.Store
	platform  itch.ClientInterface
	announcer Announcer
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
	now       func() time.Time
}

func NewReconciler(store storage.Store, platform itch.ClientInterface, announcer Announcer, metrics providers.MetricsProviderInterface, logger providers.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		platform:  platform,
		announcer: announcer,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Reconcile merges the uploads currently published for titleID into its
// history. Existing records are never rewritten. Only the newest upload can
// move the version pointer and trigger an announcement.
func (r *Reconciler) Reconcile(ctx context.Context, titleID string) (models.ReconcileResult, error) {
	uploads, err := r.platform.FetchUploads(ctx, titleID)
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("fetch uploads: %w", err)
	}
	if len(uploads) == 0 {
		r.logger.Debugf(providers.TypeWatcher, "No uploads published for %s", titleID)
		return models.ReconcileResult{}, nil
	}

	sortNewestFirst(uploads)
	latest := uploads[0]
	latestID := latest.ID.String()

	var (
		result        models.ReconcileResult
		versionsTotal int
	)
	titles := models.Titles{}
	err = r.store.Update(storage.KeyTitles, &titles, func(bool) error {
		if titles == nil {
			titles = models.Titles{}
		}
		entry := titles.Entry(titleID)
		now := r.now().UTC()

		seen := make(map[string]struct{}, len(uploads))
		fresh := make([]models.VersionRecord, 0, len(uploads))
		for _, u := range uploads {
			id := u.ID.String()
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup || entry.HasVersion(id) {
				continue
			}
			seen[id] = struct{}{}
			fresh = append(fresh, newRecord(u, now))
		}
		entry.Prepend(fresh...)
		result.Added = len(fresh)

		if latestID != "" && latestID != entry.CurrentVersion() {
			notes := buildPatchNotes(latest)
			entry.Version = &latestID
			entry.PatchNotes = &notes
			entry.LastUpdated = &now
			if rec, ok := entry.FindVersion(latestID); ok {
				result.Record = &rec
			}
			result.NewVersionDetected = true
		}
		versionsTotal = len(entry.Versions)

		if result.Added == 0 && !result.NewVersionDetected {
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("persist %s: %w", titleID, err)
	}
	r.metrics.SetVersionsTotal(titleID, versionsTotal)

	if result.Added > 0 {
		r.logger.Infof(providers.TypeWatcher, "Recorded %d new upload(s) for %s", result.Added, titleID)
	}
	if !result.NewVersionDetected {
		return result, nil
	}

	r.logger.Infof(providers.TypeWatcher, "New version detected for %s: upload %s", titleID, latestID)
	r.metrics.IncUpdatesDetected(titleID)

	// the version pointer is already persisted; a failed announcement is not a failed reconcile
	if _, err := r.announcer.Announce(titleID, latestID, buildPatchNotes(latest)); err != nil {
		r.logger.Errorf(providers.TypeWatcher, "Failed to create announcement for %s/%s: %s", titleID, latestID, err)
		r.metrics.IncAnnouncementFailures()
	}
	return result, nil
}

// sortNewestFirst orders uploads by updated_at, descending. Unparseable
// timestamps sort last and ties keep the platform's order.
func sortNewestFirst(uploads []itch.Upload) {
	sort.SliceStable(uploads, func(i, j int) bool {
		ti, okI := uploads[i].UpdatedTime()
		tj, okJ := uploads[j].UpdatedTime()
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}

func buildPatchNotes(u itch.Upload) string {
	return "New build uploaded at " + u.UpdatedAt
}

func newRecord(u itch.Upload, detected time.Time) models.VersionRecord {
	rec := models.VersionRecord{
		ID:         u.ID.String(),
		PatchNotes: buildPatchNotes(u),
		DetectedAt: detected,
		RawMeta:    u.Raw,
	}
	if t, ok := u.UpdatedTime(); ok {
		rec.UploadedAt = &t
	}
	if u.URL != "" {
		link := u.URL
		rec.DownloadURL = &link
	}
	return rec
}
