package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateConfig_Resolve(t *testing.T) {
	tc := TemplateConfig{Global: "global", PerTitle: map[string]string{"g1": "override"}}
	assert.Equal(t, "override", tc.Resolve("g1"))
	assert.Equal(t, "global", tc.Resolve("g2"))

	empty := TemplateConfig{}
	assert.Equal(t, DefaultAnnouncementTemplate, empty.Resolve("g1"))

	blankOverride := TemplateConfig{PerTitle: map[string]string{"g1": ""}}
	assert.Equal(t, DefaultAnnouncementTemplate, blankOverride.Resolve("g1"))
}
