package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rohllet/identity/internal/auth/domain"
	"github.com/rohllet/identity/internal/auth/store"
	"github.com/rohllet/identity/pkg/cryptox"
	"github.com/rohllet/identity/pkg/idx"
	"github.com/rohllet/identity/pkg/jwtx"
	"github.com/rohllet/identity/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user_not_found")
)

// AuthService orchestrates registration, login and identity resolution. The
// signer/verifier pair holds the process-wide signing key; it is created at
// startup and never replaced.
type AuthService struct {
	Store     store.Store
	Signer    jwtx.Signer
	Verifier  jwtx.Verifier
	Issuer    string
	AccessTTL time.Duration
}

// Register creates a new account and issues an identity token for it.
//
// The pre-insert existence check gives the common case a friendly early
// failure, but two concurrent registrations for the same email can both pass
// it. The email uniqueness constraint in the store is the authoritative
// check; its rejection is mapped to ErrEmailTaken as well.
func (s *AuthService) Register(
	ctx context.Context,
	email, password, firstName, lastName string,
) (domain.User, string, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	exists, err := s.Store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailTaken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race against a concurrent registration.
			return domain.User{}, "", ErrEmailTaken
		}
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and issues a fresh identity token. An unknown
// email and a wrong password produce the same ErrInvalidCredentials so
// responses never reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	// Best effort; a failed stamp shouldn't fail the login.
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID); err != nil {
		l.Warn("failed to stamp last login", slog.String("user_id", user.ID), slog.Any("err", err))
	} else {
		now := time.Now().UTC()
		user.LastLoginAt = &now
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// ResolveIdentity verifies an identity token and loads the user it was
// issued for. Every verification failure comes back as ErrInvalidToken;
// a valid token whose record has since vanished yields ErrUserNotFound.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Warn("token verification failed", slog.Any("err", err))
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces a user's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if cryptox.VerifyPassword(oldPassword, user.PasswordHash) != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	claims := jwtx.NewIdentityClaims(
		user.ID,
		user.Email,
		user.Role,
		s.AccessTTL,
		s.Issuer,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
