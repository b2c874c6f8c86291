package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	r "github.com/Shray90/YalaCarves-sub001/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	ParseToken(tokenStr string) (*Claims, error)
}

type AuthServiceImpl struct {
	users  r.UsersRepo
	jwtKey []byte
}

func NewAuthService(users r.UsersRepo, jwtKey []byte) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, jwtKey: jwtKey}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, invalidField("name", "is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidField("email", "must be a valid email address")
	}
	if len(password) < 8 {
		return nil, invalidField("password", "must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		IsAdmin:      false,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, r.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, r.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is best effort.
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return token, user, nil
}

func (s *AuthServiceImpl) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, r.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
