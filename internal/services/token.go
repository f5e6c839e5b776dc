package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrResetCodeInvalid = errors.New("verification code is invalid or expired")

// TokenService persists the two kinds of short-lived credentials: refresh
// tokens (sha256 hashed) and password reset codes (bcrypt hashed).
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	return err
}

// ValidateRefreshToken returns the owner of a stored, unexpired token.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT user_id FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	return userID, err
}

func (s *TokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// CleanupExpired removes refresh tokens past their expiry and reports how
// many were deleted.
func (s *TokenService) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// StoreResetCode replaces any outstanding code for the user.
func (s *TokenService) StoreResetCode(ctx context.Context, userID uuid.UUID, codeHash string, expiresAt time.Time) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM password_reset_codes WHERE user_id = $1 AND used_at IS NULL`, userID); err != nil {
		return fmt.Errorf("failed to clear previous codes: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO password_reset_codes (user_id, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, codeHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	return tx.Commit(ctx)
}

// ActiveResetCode returns the id and hash of the user's unused, unexpired code.
func (s *TokenService) ActiveResetCode(ctx context.Context, userID uuid.UUID) (uuid.UUID, string, error) {
	var id uuid.UUID
	var hash string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, code_hash FROM password_reset_codes
		WHERE user_id = $1 AND used_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, "", ErrResetCodeInvalid
	}
	return id, hash, err
}

// MarkResetCodeUsed consumes a code. A code already consumed by a
// concurrent request reports ErrResetCodeInvalid.
func (s *TokenService) MarkResetCodeUsed(ctx context.Context, codeID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE password_reset_codes SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`, codeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResetCodeInvalid
	}
	return nil
}

func (s *TokenService) CleanupResetCodes(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM password_reset_codes
		WHERE expires_at < NOW() OR used_at IS NOT NULL
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
