package services

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"strings"
)

const (
	TemplateScopeGlobal   = "global"
	TemplateScopePerTitle = "perTitle"
)

type TemplateInput struct {
	Scope    string `json:"scope" validate:"required|in:global,perTitle"`
	TitleID  string `json:"titleId"`
	Template string `json:"template"`
}

type TemplateServiceInterface interface {
	Get() (models.TemplateConfig, error)
	Save(input TemplateInput) (models.TemplateConfig, error)
}

type TemplateService struct {
	store storage.Store
	cache providers.CacheProviderInterface
}

func NewTemplateService(store storage.Store, cache providers.CacheProviderInterface) TemplateServiceInterface {
	return &TemplateService{store: store, cache: cache}
}

func (ts *TemplateService) Get() (models.TemplateConfig, error) {
	tpl := models.TemplateConfig{PerTitle: map[string]string{}}
	found, err := ts.store.Get(storage.KeyTemplates, &tpl)
	if err != nil {
		return models.TemplateConfig{}, err
	}
	if !found {
		return models.DefaultTemplateConfig(), nil
	}
	if tpl.PerTitle == nil {
		tpl.PerTitle = map[string]string{}
	}
	return tpl, nil
}

func (ts *TemplateService) Save(input TemplateInput) (models.TemplateConfig, error) {
	if err := validateInput(&input); err != nil {
		return models.TemplateConfig{}, err
	}
	titleID := strings.TrimSpace(input.TitleID)
	if input.Scope == TemplateScopePerTitle && titleID == "" {
		return models.TemplateConfig{}, invalidf("titleId is required for perTitle templates")
	}

	tpl := models.TemplateConfig{PerTitle: map[string]string{}}
	err := ts.store.Update(storage.KeyTemplates, &tpl, func(bool) error {
		if tpl.PerTitle == nil {
			tpl.PerTitle = map[string]string{}
		}
		switch input.Scope {
		case TemplateScopeGlobal:
			tpl.Global = input.Template
		case TemplateScopePerTitle:
			if input.Template == "" {
				delete(tpl.PerTitle, titleID)
			} else {
				tpl.PerTitle[titleID] = input.Template
			}
		}
		return nil
	})
	if err != nil {
		return models.TemplateConfig{}, err
	}
	ts.cache.Clear()
	return tpl, nil
}

// RenderTemplate substitutes every {gameId}, {version} and {patchNotes} token.
// Substituted values are not scanned again for placeholders.
func RenderTemplate(tpl, titleID, version, patchNotes string) string {
	return strings.NewReplacer(
		"{gameId}", titleID,
		"{version}", version,
		"{patchNotes}", patchNotes,
	).Replace(tpl)
}
