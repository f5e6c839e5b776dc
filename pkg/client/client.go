// Package client is a Go client for the worktrack API. Every call takes the
// caller's *Session explicitly; the package keeps no global state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClock replaces time.Now; tests use it to drive session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New returns a client for the API rooted at baseURL, for example
// "https://worktrack.example.com". The /api prefix is added per call.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends body as JSON and decodes a 2xx response into out. A nil sess
// sends no Authorization header.
func (c *Client) do(ctx context.Context, sess *Session, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.send(ctx, sess, method, path, query, reader, contentType, out)
}

// send is do with a pre-encoded body, for requests that are not JSON.
func (c *Client) send(ctx context.Context, sess *Session, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess != nil {
		token, _ := sess.tokens()
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: "decode " + path, Err: err}
	}
	return nil
}

type Credentials struct {
	Username string
	Password string
}

// Login signs in with a username or email and returns a new session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, nil, http.MethodPost, "/login/", nil, dto.LoginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	role, ok := access.ParseRole(resp.UserType)
	if !ok {
		return nil, fmt.Errorf("server returned unknown usertype %q", resp.UserType)
	}
	return &Session{
		UserID:       resp.UserID,
		Username:     resp.Username,
		FirstName:    resp.FirstName,
		Email:        resp.Email,
		Role:         role,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       resp.AccessTokenExpiry,
		now:          c.now,
	}, nil
}

// Refresh rotates the session's token pair in place.
func (c *Client) Refresh(ctx context.Context, sess *Session) error {
	_, refresh := sess.tokens()
	var resp dto.TokenResponse
	if err := c.do(ctx, nil, http.MethodPost, "/token/refresh/", nil, dto.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.AccessToken = resp.AccessToken
	sess.RefreshToken = resp.RefreshToken
	sess.Expiry = resp.AccessTokenExpiry
	return nil
}

// Logout revokes the session's refresh token. The session must not be used
// afterwards.
func (c *Client) Logout(ctx context.Context, sess *Session) error {
	_, refresh := sess.tokens()
	return c.do(ctx, sess, http.MethodPost, "/logout/", nil, dto.RefreshTokenRequest{RefreshToken: refresh}, nil)
}

// SubmittedToUsers returns the reviewers the session's user may submit
// entries to.
func (c *Client) SubmittedToUsers(ctx context.Context, sess *Session) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	if err := c.do(ctx, sess, http.MethodGet, "/teams/submitted-to-users/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tasks lists the caller's tasks, most urgent first.
func (c *Client) Tasks(ctx context.Context, sess *Session) ([]dto.TaskResponse, error) {
	var out []dto.TaskResponse
	if err := c.do(ctx, sess, http.MethodGet, "/tasks/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignedProjects(ctx context.Context, sess *Session) ([]dto.ProjectResponse, error) {
	var out []dto.ProjectResponse
	if err := c.do(ctx, sess, http.MethodGet, "/projects/assigned/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
