package controllers

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"net/http"
)

const templatesCacheKey = "templates"

type TemplateController struct {
	logger  providers.Logger
	service services.TemplateServiceInterface
	cache   providers.CacheProviderInterface
}

func NewTemplateController(logger providers.Logger, service services.TemplateServiceInterface, cache providers.CacheProviderInterface) *TemplateController {
	return &TemplateController{logger: logger, service: service, cache: cache}
}

func (tc *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	serveFromCacheOrCompute(w, r, tc.cache, tc.logger, templatesCacheKey, func() (any, error) {
		return tc.service.Get()
	})
}

func (tc *TemplateController) Save(w http.ResponseWriter, r *http.Request) {
	var payload services.TemplateInput
	if !decodeBody(w, r, &payload) {
		return
	}
	tpl, err := tc.service.Save(payload)
	if err != nil {
		writeServiceError(w, r, tc.logger, err)
		return
	}
	tc.logger.Infof(providers.TypePost, "Template saved (%s %s)", payload.Scope, payload.TitleID)
	writeJSON(w, http.StatusOK, tpl)
}
