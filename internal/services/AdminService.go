package services

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"crypto/subtle"
	"errors"
	"strings"
)

const (
	AdminActionAdd    = "add"
	AdminActionRemove = "remove"
)

type AdminUserInput struct {
	Action string `json:"action" validate:"required|in:add,remove"`
	Token  string `json:"token" validate:"required|minLen:8"`
}

type AdminServiceInterface interface {
	providers.AdminAuthorizer
	// CheckToken reports whether token is in the static admin allowlist.
	CheckToken(token string) (bool, error)
	// UpdateTokens adds or removes an allowlisted token. Both actions are idempotent.
	UpdateTokens(input AdminUserInput) ([]string, error)
}

type AdminService struct {
	store  storage.Store
	tokens *TokenManager
	logger providers.Logger
}

func NewAdminService(store storage.Store, tokens *TokenManager, logger providers.Logger) AdminServiceInterface {
	return &AdminService{store: store, tokens: tokens, logger: logger}
}

// IsAdmin accepts an allowlisted static token or a valid session token
// carrying the admin claim.
func (as *AdminService) IsAdmin(credential string) (bool, error) {
	ok, err := as.CheckToken(credential)
	if err != nil || ok {
		return ok, err
	}

	session, err := as.tokens.Verify(credential)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return session.Admin, nil
}

func (as *AdminService) CheckToken(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	var admins []string
	if _, err := as.store.Get(storage.KeyAdmins, &admins); err != nil {
		return false, err
	}
	for _, a := range admins {
		if subtle.ConstantTimeCompare([]byte(a), []byte(token)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

func (as *AdminService) UpdateTokens(input AdminUserInput) ([]string, error) {
	input.Token = strings.TrimSpace(input.Token)
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	var admins []string
	err := as.store.Update(storage.KeyAdmins, &admins, func(bool) error {
		idx := -1
		for i, a := range admins {
			if a == input.Token {
				idx = i
				break
			}
		}
		switch {
		case input.Action == AdminActionAdd && idx < 0:
			admins = append(admins, input.Token)
		case input.Action == AdminActionRemove && idx >= 0:
			admins = append(admins[:idx], admins[idx+1:]...)
		default:
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.logger.Infof(providers.TypePost, "Admin allowlist %s, %d tokens", input.Action, len(admins))
	if admins == nil {
		admins = []string{}
	}
	return admins, nil
}
