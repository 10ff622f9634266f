package controllers

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type TitleController struct {
	logger  providers.Logger
	service services.TitleServiceInterface
}

func NewTitleController(logger providers.Logger, service services.TitleServiceInterface) *TitleController {
	return &TitleController{logger: logger, service: service}
}

type versionsResponse struct {
	Versions any `json:"versions"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

func (tc *TitleController) ReportVersion(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleId")
	var payload services.VersionReport
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := tc.service.ReportVersion(titleID, payload); err != nil {
		writeServiceError(w, r, tc.logger, err)
		return
	}
	tc.logger.Infof(providers.TypePost, "Version %s reported for %s", payload.Version, titleID)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (tc *TitleController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	cur, err := tc.service.GetCurrent(chi.URLParam(r, "titleId"))
	if err != nil {
		writeServiceError(w, r, tc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func (tc *TitleController) GetVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := tc.service.GetVersions(r.Context(), chi.URLParam(r, "titleId"))
	if err != nil {
		writeServiceError(w, r, tc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, versionsResponse{Versions: versions})
}

func (tc *TitleController) Download(w http.ResponseWriter, r *http.Request) {
	u, err := tc.service.DownloadURL(r.Context(), chi.URLParam(r, "titleId"), r.URL.Query().Get("version"))
	if err != nil {
		writeServiceError(w, r, tc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{URL: u})
}
