package models

const DefaultAnnouncementTemplate = "New update for {gameId}: version {version}\n\n{patchNotes}"

type TemplateConfig struct {
	Global   string            `json:"global"`
	PerTitle map[string]string `json:"perTitle"`
}

func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		Global:   DefaultAnnouncementTemplate,
		PerTitle: map[string]string{},
	}
}

// Resolve picks the per-title override, then the global template, then the
// built-in default.
func (tc TemplateConfig) Resolve(titleID string) string {
	if tpl := tc.PerTitle[titleID]; tpl != "" {
		return tpl
	}
	if tc.Global != "" {
		return tc.Global
	}
	return DefaultAnnouncementTemplate
}
