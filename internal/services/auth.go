package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ResetCodeNotifier delivers a password reset code out of band.
type ResetCodeNotifier interface {
	PasswordResetCode(to, username, code string, ttl time.Duration)
}

// AuthService owns the password lifecycle: reset codes and changes.
type AuthService struct {
	users    *UserService
	tokens   *TokenService
	notifier ResetCodeNotifier
	codeTTL  time.Duration
	log      zerolog.Logger
}

func NewAuthService(users *UserService, tokens *TokenService, notifier ResetCodeNotifier, codeTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		codeTTL:  codeTTL,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestResetCode issues a code for the account named by login. Unknown
// accounts succeed silently so the endpoint cannot be used to discover users.
func (s *AuthService) RequestResetCode(ctx context.Context, login string) error {
	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		s.log.Debug().Str("login", login).Msg("reset code requested for unknown account")
		return nil
	}
	if err != nil {
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.users.cost)
	if err != nil {
		return fmt.Errorf("failed to hash reset code: %w", err)
	}

	if err := s.tokens.StoreResetCode(ctx, user.ID, string(hash), time.Now().Add(s.codeTTL)); err != nil {
		return err
	}

	s.notifier.PasswordResetCode(user.Email, user.Username, code, s.codeTTL)
	s.log.Info().Str("user_id", user.ID.String()).Msg("password reset code issued")
	return nil
}

// ResetPassword sets a new password using a previously issued code.
func (s *AuthService) ResetPassword(ctx context.Context, login, code, newPassword, confirm string) error {
	if err := validateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return ErrResetCodeInvalid
	}
	if err != nil {
		return err
	}

	codeID, hash, err := s.tokens.ActiveResetCode(ctx, user.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return ErrResetCodeInvalid
	}
	if err := s.tokens.MarkResetCodeUsed(ctx, codeID); err != nil {
		return err
	}

	return s.setPassword(ctx, user.ID, newPassword)
}

// ChangePassword is the authenticated variant that checks the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, confirm string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.users.CheckPassword(user, current) {
		return ErrInvalidCredentials
	}
	if err := validateNewPassword(newPassword, confirm); err != nil {
		return err
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if err := s.users.SetPassword(ctx, userID, password); err != nil {
		return err
	}
	// Every existing session ends with a password change.
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	s.log.Info().Str("user_id", userID.String()).Msg("password changed")
	return nil
}

func validateNewPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return invalid("new_password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if password != confirm {
		return invalid("confirm_password", "passwords do not match")
	}
	return nil
}
