package controllers

import (
	"buildwatch/internal/launcher"
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"net/http"
	"strings"
)

type LauncherController struct {
	logger  providers.Logger
	mailbox launcher.MailboxInterface
}

func NewLauncherController(logger providers.Logger, mailbox launcher.MailboxInterface) *LauncherController {
	return &LauncherController{logger: logger, mailbox: mailbox}
}

type launchRequest struct {
	TitleID string `json:"titleId"`
	Version string `json:"version"`
}

type launchResponse struct {
	Success     bool                       `json:"success"`
	Instruction models.LauncherInstruction `json:"instruction"`
}

func (lc *LauncherController) Poll(w http.ResponseWriter, r *http.Request) {
	titleID := strings.TrimSpace(r.URL.Query().Get("titleId"))
	if titleID == "" {
		writeError(w, http.StatusBadRequest, "titleId is required")
		return
	}
	writeJSON(w, http.StatusOK, lc.mailbox.Poll(titleID, r.URL.Query().Get("clientId")))
}

func (lc *LauncherController) Launch(w http.ResponseWriter, r *http.Request) {
	var payload launchRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.TitleID = strings.TrimSpace(payload.TitleID)
	payload.Version = strings.TrimSpace(payload.Version)
	if payload.TitleID == "" || payload.Version == "" {
		writeError(w, http.StatusBadRequest, "titleId and version are required")
		return
	}
	in := lc.mailbox.Post(payload.TitleID, payload.Version)
	writeJSON(w, http.StatusOK, launchResponse{Success: true, Instruction: in})
}
