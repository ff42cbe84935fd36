package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/notify"
	"github.com/Skotchmaster/emart/internal/repo"
	pkghash "github.com/Skotchmaster/emart/pkg/hash"
	"github.com/Skotchmaster/emart/pkg/logging"
	"github.com/Skotchmaster/emart/pkg/mykafka"
	"github.com/Skotchmaster/emart/pkg/tokens"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	Users     UserRepo
	Notifier  notify.Notifier
	Events    EventPublisher
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) CreateAccessToken(role, id string, issuedAt time.Time) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return tokens.CreateAccessToken(role, id, issuedAt, issuedAt.Add(ttl), s.JWTSecret)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	tok, err := s.CreateAccessToken(user.Role, user.ID.Hex(), nowFunc(s.Now))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: tok, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		if errors.Is(err, pkghash.ErrPasswordTooShort) {
			return nil, fmt.Errorf("password must be at least %d characters: %w", pkghash.MinPasswordLength, ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         tokens.RoleUser,
		CreatedAt:    nowFunc(s.Now),
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user already exists: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	l.Info("user_registered", "user_id", user.ID.Hex())

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, notify.EventWelcome, user.Email, notify.WelcomePayload{Name: user.Name})
	}
	publish(ctx, s.Events, mykafka.TopicUsers, user.ID.Hex(), "user_registered", map[string]string{
		"id":    user.ID.Hex(),
		"email": user.Email,
	})

	return s.issue(user)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// AdminLogin is Login restricted to admin accounts.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		logging.FromContext(ctx).Warn("admin_login_denied", "user_id", user.ID.Hex())
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	user, err := s.Users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account or promotes an existing user and resets its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, fmt.Errorf("admin email and password are required: %w", ErrValidation)
	}
	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.Users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.Users.UpdateUserAccess(ctx, existing.ID, tokens.RoleAdmin, pwHash); err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		existing.Role = tokens.RoleAdmin
		existing.PasswordHash = pwHash
		return existing, false, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         tokens.RoleAdmin,
		CreatedAt:    nowFunc(s.Now),
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}
