package services

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AnnouncementInput struct {
	Title   string `json:"title" validate:"required|maxLen:200"`
	Content string `json:"content" validate:"required"`
	Kind    string `json:"kind" validate:"required|in:global,title-specific"`
	TitleID string `json:"titleId"`
}

type AnnouncementEdit struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AnnouncementServiceInterface interface {
	// Announce renders the template for titleID and prepends the result to the feed.
	Announce(titleID, versionID, patchNotes string) (*models.Announcement, error)
	Create(input AnnouncementInput) (*models.Announcement, error)
	Edit(id string, input AnnouncementEdit) (*models.Announcement, error)
	Delete(id string) (*models.Announcement, error)
	List(filter models.AnnouncementFilter) ([]*models.Announcement, error)
}

type AnnouncementService struct {
	store     storage.Store
	templates TemplateServiceInterface
	cache     providers.CacheProviderInterface
	now       func() time.Time
}

func NewAnnouncementService(store storage.Store, templates TemplateServiceInterface, cache providers.CacheProviderInterface) AnnouncementServiceInterface {
	return &AnnouncementService{
		store:     store,
		templates: templates,
		cache:     cache,
		now:       time.Now,
	}
}

func (as *AnnouncementService) Announce(titleID, versionID, patchNotes string) (*models.Announcement, error) {
	tpl, err := as.templates.Get()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	id := titleID
	a := &models.Announcement{
		ID:      uuid.NewString(),
		Title:   fmt.Sprintf("New Update: %s - %s", titleID, versionID),
		Content: RenderTemplate(tpl.Resolve(titleID), titleID, versionID, patchNotes),
		Kind:    models.KindTitleSpecific,
		TitleID: &id,
		Date:    as.now().UTC(),
	}
	if err := as.prepend(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (as *AnnouncementService) Create(input AnnouncementInput) (*models.Announcement, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.TitleID = strings.TrimSpace(input.TitleID)
	if input.Kind == "" {
		input.Kind = string(models.KindGlobal)
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		ID:      uuid.NewString(),
		Title:   input.Title,
		Content: input.Content,
		Kind:    models.AnnouncementKind(input.Kind),
		Date:    as.now().UTC(),
	}
	if a.Kind == models.KindTitleSpecific {
		if input.TitleID == "" {
			return nil, invalidf("titleId is required for title-specific announcements")
		}
		a.TitleID = &input.TitleID
	}

	if err := as.prepend(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (as *AnnouncementService) prepend(a *models.Announcement) error {
	var list []*models.Announcement
	err := as.store.Update(storage.KeyAnnouncements, &list, func(bool) error {
		list = append([]*models.Announcement{a}, list...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save announcement: %w", err)
	}
	as.cache.Clear()
	return nil
}

func (as *AnnouncementService) Edit(id string, input AnnouncementEdit) (*models.Announcement, error) {
	if input.Title == "" && input.Content == "" {
		return nil, invalidf("title or content is required")
	}

	var (
		list   []*models.Announcement
		edited *models.Announcement
	)
	err := as.store.Update(storage.KeyAnnouncements, &list, func(bool) error {
		for _, a := range list {
			if a.ID != id {
				continue
			}
			if input.Title != "" {
				a.Title = input.Title
			}
			if input.Content != "" {
				a.Content = input.Content
			}
			now := as.now().UTC()
			a.EditedAt = &now
			edited = a
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	as.cache.Clear()
	return edited, nil
}

func (as *AnnouncementService) Delete(id string) (*models.Announcement, error) {
	var (
		list    []*models.Announcement
		removed *models.Announcement
	)
	err := as.store.Update(storage.KeyAnnouncements, &list, func(bool) error {
		for i, a := range list {
			if a.ID == id {
				removed = a
				list = append(list[:i], list[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	as.cache.Clear()
	return removed, nil
}

func (as *AnnouncementService) List(filter models.AnnouncementFilter) ([]*models.Announcement, error) {
	var list []*models.Announcement
	if _, err := as.store.Get(storage.KeyAnnouncements, &list); err != nil {
		return nil, err
	}

	out := make([]*models.Announcement, 0, len(list))
	for _, a := range list {
		if filter.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
