package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/oauth"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	stateTTL     = 10 * time.Minute
	loginCodeTTL = 30 * time.Second
)

type AuthHandler struct {
	frontendURL  string
	google       oauth.Provider
	pending      *oauth.Store
	userService  UserServiceInterface
	authService  AuthServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
}

// NewAuthHandler wires the password and token endpoints. google may be nil
// when sign-in with Google is not configured.
func NewAuthHandler(
	frontendURL string,
	google oauth.Provider,
	pending *oauth.Store,
	userService UserServiceInterface,
	authService AuthServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	return &AuthHandler{
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		google:       google,
		pending:      pending,
		userService:  userService,
		authService:  authService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}
}

// issueTokens signs a pair for user and records the refresh token hash.
func (h *AuthHandler) issueTokens(c *drift.Context, user *models.User) (*services.TokenPair, bool) {
	pair, err := h.jwtService.GenerateTokenPair(services.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
	if err != nil {
		writeError(c, err, "failed to generate tokens")
		return nil, false
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(c.Request.Context(), user.ID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		writeError(c, err, "failed to store refresh token")
		return nil, false
	}
	return pair, true
}

func loginResponse(user *models.User, pair *services.TokenPair) dto.LoginResponse {
	return dto.LoginResponse{
		Status:            "success",
		UserID:            user.ID,
		Username:          user.Username,
		FirstName:         user.FirstName,
		Email:             user.Email,
		UserType:          string(user.Role),
		AccessToken:       pair.AccessToken,
		RefreshToken:      pair.RefreshToken,
		AccessTokenExpiry: pair.ExpiresAt,
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		badRequest(c, "username", "username and password are required")
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, "failed to sign in")
		return
	}

	pair, ok := h.issueTokens(c, user)
	if !ok {
		return
	}

	requestLog(c).Info().Str("user_id", user.ID.String()).Msg("signed in")
	_ = c.JSON(http.StatusOK, loginResponse(user, pair))
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		badRequest(c, "refresh_token", "refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()
	tokenHash := services.HashToken(req.RefreshToken)

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	if err := h.tokenService.RevokeRefreshToken(ctx, tokenHash); err != nil {
		writeError(c, err, "failed to revoke old token")
		return
	}

	pair, ok := h.issueTokens(c, user)
	if !ok {
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:       pair.AccessToken,
		RefreshToken:      pair.RefreshToken,
		ExpiresIn:         pair.ExpiresIn,
		AccessTokenExpiry: pair.ExpiresAt,
	})
}

// Logout revokes the presented refresh token. Unknown tokens still succeed.
func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	if req.RefreshToken != "" {
		_ = h.tokenService.RevokeRefreshToken(c.Request.Context(), services.HashToken(req.RefreshToken))
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

// RequestResetCode always answers the same way so accounts cannot be enumerated.
func (h *AuthHandler) RequestResetCode(c *drift.Context) {
	var req dto.ResetCodeRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	if strings.TrimSpace(req.UsernameOrEmail) == "" {
		badRequest(c, "username_or_email", "username or email is required")
		return
	}

	if err := h.authService.RequestResetCode(c.Request.Context(), req.UsernameOrEmail); err != nil {
		writeError(c, err, "failed to issue verification code")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "if the account exists, a verification code has been sent"})
}

// ChangePassword serves both the emailed-code reset and the signed-in
// change; the latter needs a bearer token since the route is public.
func (h *AuthHandler) ChangePassword(c *drift.Context) {
	var req dto.ChangePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	ctx := c.Request.Context()

	if req.IsReset() {
		if req.UsernameOrEmail == "" || req.VerificationCode == "" {
			badRequest(c, "verification_code", "username or email and verification code are required")
			return
		}
		if err := h.authService.ResetPassword(ctx, req.UsernameOrEmail, req.VerificationCode, req.NewPassword, req.ConfirmPassword); err != nil {
			writeError(c, err, "failed to reset password")
			return
		}
		_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed"})
		return
	}

	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		c.Unauthorized("missing authorization header")
		return
	}
	claims, err := h.jwtService.ValidateAccessToken(token)
	if err != nil {
		c.Unauthorized("invalid or expired token")
		return
	}

	if err := h.authService.ChangePassword(ctx, claims.UserID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			validationError(c, "current_password", nil, "current password is incorrect")
			return
		}
		writeError(c, err, "failed to change password")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed"})
}

func (h *AuthHandler) GoogleConsent(c *drift.Context) {
	if h.google == nil {
		c.NotFound("google sign-in is not configured")
		return
	}

	state, err := h.pending.Issue(uuid.Nil, stateTTL)
	if err != nil {
		writeError(c, err, "failed to generate state")
		return
	}

	_ = c.JSON(http.StatusOK, dto.ConsentURLResponse{URL: h.google.GetConsentURL(state)})
}

// GoogleCallback resolves the Google account to an existing user by
// verified email and redirects to the frontend with a one-time login code.
// Accounts are never created here.
func (h *AuthHandler) GoogleCallback(c *drift.Context) {
	if h.google == nil {
		c.NotFound("google sign-in is not configured")
		return
	}

	if _, ok := h.pending.Consume(c.QueryParam("state")); !ok {
		h.redirect(c, "error", "invalid or expired state")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirect(c, "error", "missing authorization code")
		return
	}

	ctx := c.Request.Context()
	info, err := h.google.ExchangeCode(ctx, code)
	if err != nil {
		requestLog(c).Warn().Err(err).Msg("google code exchange failed")
		h.redirect(c, "error", "google sign-in failed")
		return
	}
	if !info.VerifiedEmail {
		h.redirect(c, "error", "google account email is not verified")
		return
	}

	user, err := h.userService.GetByEmail(ctx, info.Email)
	if err != nil {
		h.redirect(c, "error", "no account is registered for this email")
		return
	}

	loginCode, err := h.pending.Issue(user.ID, loginCodeTTL)
	if err != nil {
		h.redirect(c, "error", "failed to generate login code")
		return
	}

	h.redirect(c, "code", loginCode)
}

// ExchangeCode trades the one-time login code from GoogleCallback for a
// token pair.
func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		badRequest(c, "code", "code is required")
		return
	}

	userID, ok := h.pending.Consume(req.Code)
	if !ok || userID == uuid.Nil {
		c.Unauthorized("invalid or expired code")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	pair, ok := h.issueTokens(c, user)
	if !ok {
		return
	}
	_ = c.JSON(http.StatusOK, loginResponse(user, pair))
}

func (h *AuthHandler) redirect(c *drift.Context, key, value string) {
	target := h.frontendURL + "/auth/callback?" + url.Values{key: {value}}.Encode()
	c.Response.Header().Set("Location", target)
	c.Response.WriteHeader(http.StatusFound)
}
