package domain

import "time"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}
