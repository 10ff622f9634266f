package controllers

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/services"
	"net/http"
)

type UserController struct {
	logger  providers.Logger
	service services.UserServiceInterface
}

func NewUserController(logger providers.Logger, service services.UserServiceInterface) *UserController {
	return &UserController{logger: logger, service: service}
}

func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var creds services.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if err := uc.service.Register(creds); err != nil {
		writeServiceError(w, r, uc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, successResponse{Success: true})
}

func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds services.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	res, err := uc.service.Login(creds)
	if err != nil {
		writeServiceError(w, r, uc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
