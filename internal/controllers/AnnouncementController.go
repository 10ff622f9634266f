package controllers

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AnnouncementController struct {
	logger  providers.Logger
	service services.AnnouncementServiceInterface
	cache   providers.CacheProviderInterface
}

func NewAnnouncementController(logger providers.Logger, service services.AnnouncementServiceInterface, cache providers.CacheProviderInterface) *AnnouncementController {
	return &AnnouncementController{logger: logger, service: service, cache: cache}
}

type deleteAnnouncementResponse struct {
	Success bool                 `json:"success"`
	Removed *models.Announcement `json:"removed"`
}

func (ac *AnnouncementController) List(w http.ResponseWriter, r *http.Request) {
	filter := models.AnnouncementFilter{
		TitleID: r.URL.Query().Get("titleId"),
		Kind:    models.AnnouncementKind(r.URL.Query().Get("kind")),
	}
	key := "announcements:" + string(filter.Kind) + ":" + filter.TitleID
	serveFromCacheOrCompute(w, r, ac.cache, ac.logger, key, func() (any, error) {
		return ac.service.List(filter)
	})
}

func (ac *AnnouncementController) Create(w http.ResponseWriter, r *http.Request) {
	var payload services.AnnouncementInput
	if !decodeBody(w, r, &payload) {
		return
	}
	a, err := ac.service.Create(payload)
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Announcement %s created", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

func (ac *AnnouncementController) Edit(w http.ResponseWriter, r *http.Request) {
	var payload services.AnnouncementEdit
	if !decodeBody(w, r, &payload) {
		return
	}
	a, err := ac.service.Edit(chi.URLParam(r, "id"), payload)
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (ac *AnnouncementController) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := ac.service.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Announcement %s deleted", removed.ID)
	writeJSON(w, http.StatusOK, deleteAnnouncementResponse{Success: true, Removed: removed})
}
