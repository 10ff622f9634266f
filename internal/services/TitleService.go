package services

import (
	"buildwatch/internal/itch"
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"buildwatch/internal/structures"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VersionReconciler merges the platform's uploads of a title into its history.
type VersionReconciler interface {
	Reconcile(ctx context.Context, titleID string) (models.ReconcileResult, error)
}

type VersionReport struct {
	Version    string `json:"version" validate:"required"`
	PatchNotes string `json:"patchNotes"`
}

type CurrentVersion struct {
	Current     *string    `json:"current"`
	LastUpdated *time.Time `json:"lastUpdated"`
	PatchNotes  *string    `json:"patchNotes"`
}

type TitleServiceInterface interface {
	// ReportVersion moves the version pointer of titleID to report.Version and
	// records it in the history when it is new.
	ReportVersion(titleID string, report VersionReport) error
	GetCurrent(titleID string) (*CurrentVersion, error)
	// GetVersions returns the history. An empty history of a tracked title is
	// reconciled once first; untracked titles are never fetched.
	GetVersions(ctx context.Context, titleID string) ([]models.VersionRecord, error)
	GetAll() (models.Titles, error)
	DownloadURL(ctx context.Context, titleID, versionID string) (string, error)
}

type TitleService struct {
	tracked    map[string]struct{}
	store      storage.Store
	reconciler VersionReconciler
	platform   itch.ClientInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewTitleService(conf *structures.Config, store storage.Store, reconciler VersionReconciler, platform itch.ClientInterface, logger providers.Logger) TitleServiceInterface {
	tracked := make(map[string]struct{}, len(conf.Watcher.TitleIDs))
	for _, id := range conf.Watcher.TitleIDs {
		tracked[id] = struct{}{}
	}
	return &TitleService{
		tracked:    tracked,
		store:      store,
		reconciler: reconciler,
		platform:   platform,
		logger:     logger,
		now:        time.Now,
	}
}

func (ts *TitleService) ReportVersion(titleID string, report VersionReport) error {
	titleID = strings.TrimSpace(titleID)
	report.Version = strings.TrimSpace(report.Version)
	if titleID == "" {
		return invalidf("titleId is required")
	}
	if err := validateInput(&report); err != nil {
		return err
	}

	titles := models.Titles{}
	return ts.store.Update(storage.KeyTitles, &titles, func(bool) error {
		if titles == nil {
			titles = models.Titles{}
		}
		now := ts.now().UTC()
		entry := titles.Entry(titleID)
		version, notes := report.Version, report.PatchNotes
		entry.Version = &version
		entry.PatchNotes = &notes
		entry.LastUpdated = &now
		if !entry.HasVersion(version) {
			entry.Prepend(models.VersionRecord{
				ID:         version,
				PatchNotes: notes,
				DetectedAt: now,
			})
		}
		return nil
	})
}

func (ts *TitleService) entry(titleID string) (*models.TitleEntry, error) {
	titles := models.Titles{}
	if _, err := ts.store.Get(storage.KeyTitles, &titles); err != nil {
		return nil, err
	}
	entry, ok := titles[titleID]
	if !ok || entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (ts *TitleService) GetCurrent(titleID string) (*CurrentVersion, error) {
	entry, err := ts.entry(titleID)
	if err != nil {
		return nil, err
	}
	return &CurrentVersion{
		Current:     entry.Version,
		LastUpdated: entry.LastUpdated,
		PatchNotes:  entry.PatchNotes,
	}, nil
}

func (ts *TitleService) GetVersions(ctx context.Context, titleID string) ([]models.VersionRecord, error) {
	entry, err := ts.entry(titleID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if entry != nil && len(entry.Versions) > 0 {
		return entry.Versions, nil
	}
	if _, ok := ts.tracked[titleID]; !ok {
		return []models.VersionRecord{}, nil
	}

	if _, err := ts.reconciler.Reconcile(ctx, titleID); err != nil {
		// an unreachable platform still leaves an empty, valid answer
		ts.logger.Warnf(providers.TypeGet, "On-demand reconcile for %s failed: %s", titleID, err)
		return []models.VersionRecord{}, nil
	}

	entry, err = ts.entry(titleID)
	if errors.Is(err, ErrNotFound) {
		return []models.VersionRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if entry.Versions == nil {
		return []models.VersionRecord{}, nil
	}
	return entry.Versions, nil
}

func (ts *TitleService) GetAll() (models.Titles, error) {
	titles := models.Titles{}
	if _, err := ts.store.Get(storage.KeyTitles, &titles); err != nil {
		return nil, err
	}
	if titles == nil {
		titles = models.Titles{}
	}
	return titles, nil
}

func (ts *TitleService) DownloadURL(ctx context.Context, titleID, versionID string) (string, error) {
	if versionID == "" {
		return "", invalidf("version is required")
	}
	entry, err := ts.entry(titleID)
	if err != nil {
		return "", err
	}
	record, ok := entry.FindVersion(versionID)
	if !ok {
		return "", ErrNotFound
	}

	u, err := ts.platform.DownloadURL(ctx, versionID)
	if err != nil {
		if record.DownloadURL != nil && *record.DownloadURL != "" {
			ts.logger.Warnf(providers.TypeGet, "Download link lookup for %s/%s failed, using stored url: %s", titleID, versionID, err)
			return *record.DownloadURL, nil
		}
		return "", fmt.Errorf("resolve download url: %w", err)
	}
	return u, nil
}
