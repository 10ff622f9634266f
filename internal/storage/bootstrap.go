package storage

import (
	"buildwatch/internal/models"
	"errors"
)

// EnsureDefaults seeds the top-level keys the HTTP surface expects, leaving
// existing values alone.
func EnsureDefaults(s Store, adminTokens []string) error {
	if adminTokens == nil {
		adminTokens = []string{}
	}
	defaults := []struct {
		key   string
		value any
	}{
		{KeyTitles, models.Titles{}},
		{KeyAnnouncements, []*models.Announcement{}},
		{KeyAdmins, adminTokens},
		{KeyTemplates, models.DefaultTemplateConfig()},
		{KeyUsers, models.Users{}},
	}

	for _, d := range defaults {
		var probe any
		err := s.Update(d.key, &probe, func(found bool) error {
			if found && probe != nil {
				return ErrNoChange
			}
			probe = d.value
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// IsInvalidSnapshot reports whether err came from parsing a bad snapshot.
func IsInvalidSnapshot(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot)
}
