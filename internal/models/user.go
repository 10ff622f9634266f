package models

import "time"

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Users map[string]*User
