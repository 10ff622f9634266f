package models

import "time"

type AnnouncementKind string

const (
	KindGlobal        AnnouncementKind = "global"
	KindTitleSpecific AnnouncementKind = "title-specific"
)

func (k AnnouncementKind) Valid() bool {
	return k == KindGlobal || k == KindTitleSpecific
}

type Announcement struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Kind     AnnouncementKind `json:"kind"`
	TitleID  *string          `json:"titleId"`
	Date     time.Time        `json:"date"`
	EditedAt *time.Time       `json:"editedAt,omitempty"`
}

// AnnouncementFilter narrows the public feed. Empty fields match everything.
type AnnouncementFilter struct {
	TitleID string
	Kind    AnnouncementKind
}

func (f AnnouncementFilter) Match(a *Announcement) bool {
	switch f.Kind {
	case KindGlobal:
		return a.Kind == KindGlobal
	case KindTitleSpecific:
		if a.Kind != KindTitleSpecific {
			return false
		}
		return f.TitleID == "" || (a.TitleID != nil && *a.TitleID == f.TitleID)
	default:
		return true
	}
}
