package controllers

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxBackupSize = 32 << 20 // 32 MB

type AdminController struct {
	logger  providers.Logger
	titles  services.TitleServiceInterface
	admins  services.AdminServiceInterface
	backups services.BackupServiceInterface
}

func NewAdminController(logger providers.Logger, titles services.TitleServiceInterface, admins services.AdminServiceInterface, backups services.BackupServiceInterface) *AdminController {
	return &AdminController{logger: logger, titles: titles, admins: admins, backups: backups}
}

type adminLoginRequest struct {
	Token string `json:"token"`
}

type adminUsersResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

func (ac *AdminController) Titles(w http.ResponseWriter, r *http.Request) {
	titles, err := ac.titles.GetAll()
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (ac *AdminController) Backup(w http.ResponseWriter, r *http.Request) {
	compress := strings.EqualFold(r.URL.Query().Get("compress"), "zstd")
	data, err := ac.backups.Backup(compress)
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}

	name := "buildwatch-backup-" + time.Now().UTC().Format("20060102-150405") + ".json"
	contentType := "application/json"
	if compress {
		name += ".zst"
		contentType = "application/zstd"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Restore accepts the snapshot as a multipart "file" field or as the raw body.
func (ac *AdminController) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupSize)

	data, err := readBackupPayload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Backup is too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ac.backups.Restore(data); err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Store restored by admin request")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func readBackupPayload(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing backup file: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (ac *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var payload adminLoginRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	ok, err := ac.admins.CheckToken(payload.Token)
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (ac *AdminController) Users(w http.ResponseWriter, r *http.Request) {
	var payload services.AdminUserInput
	if !decodeBody(w, r, &payload) {
		return
	}
	admins, err := ac.admins.UpdateTokens(payload)
	if err != nil {
		writeServiceError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, adminUsersResponse{Success: true, Count: len(admins)})
}
