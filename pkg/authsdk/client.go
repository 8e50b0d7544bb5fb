package authsdk

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
)

// Client is a client for the identity service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new identity service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account and returns the issued token and profile.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password and returns a fresh token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserInfo resolves the identity behind a token and returns its profile.
func (c *Client) UserInfo(ctx context.Context, token string) (*UserProfile, error) {
	var out UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/v1/userinfo", token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser looks up a profile by email. Requires a valid token.
func (c *Client) GetUser(ctx context.Context, token, email string) (*UserProfile, error) {
	var out UserProfile
	path := "/v1/users/" + url.PathEscape(email)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the caller's password. Requires a valid token.
func (c *Client) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) error {
	var out MessageResponse
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/password", token, req, &out, http.StatusOK)
}

func (c *Client) doJSON(
	ctx context.Context,
	method, path, token string,
	body, target any,
	expectedStatus int,
) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authsdk: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("authsdk: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("authsdk: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("authsdk: read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("authsdk: decode response: %w", err)
	}
	return nil
}

// parseErrorResponse turns an error body into a typed *APIError. Bodies that
// aren't the standard error shape (e.g. the bare 401 from the authn
// middleware) still come back as an APIError with the status preserved.
func parseErrorResponse(status int, raw []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Code != "" {
		return &APIError{
			StatusCode:  status,
			Code:        er.Code,
			Description: er.Description,
		}
	}

	code := ErrorCodeServerError
	if status == http.StatusUnauthorized {
		code = ErrorCodeInvalidToken
	}
	return &APIError{
		StatusCode:  status,
		Code:        code,
		Description: fmt.Sprintf("unexpected response (status %d)", status),
	}
}
