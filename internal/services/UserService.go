package services

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"buildwatch/internal/structures"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Credentials struct {
	Username string `json:"username" validate:"required|minLen:3|maxLen:64"`
	Password string `json:"password" validate:"required|minLen:8|maxLen:72"`
}

type LoginResult struct {
	Token string `json:"token"`
	Admin bool   `json:"admin"`
}

type UserServiceInterface interface {
	Register(creds Credentials) error
	Login(creds Credentials) (*LoginResult, error)
}

type UserService struct {
	store      storage.Store
	tokens     *TokenManager
	limiter    providers.RateLimiterInterface
	logger     providers.Logger
	cost       int
	adminUsers map[string]struct{}
	now        func() time.Time
}

func NewUserService(conf *structures.Config, store storage.Store, tokens *TokenManager, limiter providers.RateLimiterInterface, logger providers.Logger) UserServiceInterface {
	cost := conf.Auth.PasswordCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	admins := make(map[string]struct{}, len(conf.Auth.AdminUsers))
	for _, u := range conf.Auth.AdminUsers {
		admins[strings.ToLower(strings.TrimSpace(u))] = struct{}{}
	}
	return &UserService{
		store:      store,
		tokens:     tokens,
		limiter:    limiter,
		logger:     logger,
		cost:       cost,
		adminUsers: admins,
		now:        time.Now,
	}
}

func normalizeCredentials(creds *Credentials) error {
	creds.Username = strings.ToLower(strings.TrimSpace(creds.Username))
	return validateInput(creds)
}

func (us *UserService) Register(creds Credentials) error {
	if err := normalizeCredentials(&creds); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), us.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users := models.Users{}
	err = us.store.Update(storage.KeyUsers, &users, func(bool) error {
		if users == nil {
			users = models.Users{}
		}
		if _, exists := users[creds.Username]; exists {
			return ErrConflict
		}
		_, admin := us.adminUsers[creds.Username]
		users[creds.Username] = &models.User{
			Username:     creds.Username,
			PasswordHash: string(hash),
			Admin:        admin,
			CreatedAt:    us.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return err
	}
	us.logger.Infof(providers.TypePost, "User %s registered", creds.Username)
	return nil
}

func (us *UserService) Login(creds Credentials) (*LoginResult, error) {
	creds.Username = strings.ToLower(strings.TrimSpace(creds.Username))
	if creds.Username == "" || creds.Password == "" {
		return nil, invalidf("username and password are required")
	}
	if !us.limiter.Allow(creds.Username) {
		us.logger.Warnf(providers.TypePost, "Login rate limit hit for %s", creds.Username)
		return nil, ErrRateLimited
	}

	users := models.Users{}
	if _, err := us.store.Get(storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	user, ok := users[creds.Username]
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	_, configuredAdmin := us.adminUsers[user.Username]
	admin := user.Admin || configuredAdmin
	token, err := us.tokens.Issue(user.Username, admin)
	if err != nil {
		return nil, err
	}
	us.limiter.Reset(creds.Username)
	return &LoginResult{Token: token, Admin: admin}, nil
}
