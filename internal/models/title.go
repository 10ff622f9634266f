package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// VersionRecord is one externally published upload as seen by the watcher.
// Records are never rewritten once appended to a title's history.
type VersionRecord struct {
	ID          string          `json:"id"`
	PatchNotes  string          `json:"patchNotes"`
	DetectedAt  time.Time       `json:"detectedAt"`
	UploadedAt  *time.Time      `json:"uploadedAt"`
	DownloadURL *string         `json:"downloadUrl"`
	RawMeta     json.RawMessage `json:"meta,omitempty"`
}

// TitleEntry holds the current version pointer of a title and its history,
// newest first.
type TitleEntry struct {
	Version     *string         `json:"version"`
	PatchNotes  *string         `json:"patchNotes"`
	LastUpdated *time.Time      `json:"lastUpdated"`
	Versions    []VersionRecord `json:"versions"`
}

// Titles is the value stored under the "titles" key.
type Titles map[string]*TitleEntry

func NewTitleEntry() *TitleEntry {
	return &TitleEntry{Versions: []VersionRecord{}}
}

func (t *TitleEntry) HasVersion(id string) bool {
	for i := range t.Versions {
		if t.Versions[i].ID == id {
			return true
		}
	}
	return false
}

func (t *TitleEntry) FindVersion(id string) (VersionRecord, bool) {
	for i := range t.Versions {
		if t.Versions[i].ID == id {
			return t.Versions[i], true
		}
	}
	return VersionRecord{}, false
}

// Prepend puts records, already ordered newest first, in front of the history.
func (t *TitleEntry) Prepend(records ...VersionRecord) {
	if len(records) == 0 {
		return
	}
	merged := make([]VersionRecord, 0, len(records)+len(t.Versions))
	merged = append(merged, records...)
	t.Versions = append(merged, t.Versions...)
}

// CurrentVersion returns the version pointer or "" when none is set.
func (t *TitleEntry) CurrentVersion() string {
	if t.Version == nil {
		return ""
	}
	return *t.Version
}

// Entry returns the title entry for id, creating it when missing.
func (ts Titles) Entry(id string) *TitleEntry {
	entry, ok := ts[id]
	if !ok || entry == nil {
		entry = NewTitleEntry()
		ts[id] = entry
	}
	if entry.Versions == nil {
		entry.Versions = []VersionRecord{}
	}
	return entry
}

// ReconcileResult reports what one reconciliation of a title's uploads changed.
type ReconcileResult struct {
	NewVersionDetected bool           `json:"newVersionDetected"`
	Record             *VersionRecord `json:"record"`
	Added              int            `json:"added"`
}
