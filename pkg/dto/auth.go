package dto

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status            string    `json:"status"`
	UserID            uuid.UUID `json:"user_id"`
	Username          string    `json:"username"`
	FirstName         string    `json:"firstname"`
	Email             string    `json:"email"`
	UserType          string    `json:"usertype"`
	AccessToken       string    `json:"access_token"`
	RefreshToken      string    `json:"refresh_token"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
}

type ConsentURLResponse struct {
	URL string `json:"url"`
}

type TokenResponse struct {
	AccessToken       string    `json:"access_token"`
	RefreshToken      string    `json:"refresh_token"`
	ExpiresIn         int64     `json:"expires_in"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ResetCodeRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
}

// ChangePasswordRequest covers both flows: an authenticated change with
// CurrentPassword, or a reset with UsernameOrEmail and VerificationCode.
type ChangePasswordRequest struct {
	CurrentPassword  string `json:"current_password,omitempty"`
	UsernameOrEmail  string `json:"username_or_email,omitempty"`
	VerificationCode string `json:"verification_code,omitempty"`
	NewPassword      string `json:"new_password"`
	ConfirmPassword  string `json:"confirm_password"`
}

// IsReset reports whether the request uses the emailed-code flow.
func (r ChangePasswordRequest) IsReset() bool {
	return r.VerificationCode != "" || r.UsernameOrEmail != ""
}

type MessageResponse struct {
	Message string `json:"message"`
}
