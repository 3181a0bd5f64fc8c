package usersdk

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

// Client talks to the user management service. It covers the public
// endpoints and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates and returns a Session for the issued token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var tok TokenResponse
	if err := c.call(ctx, "", http.MethodPost, "/login", nil, req, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(tok.AccessToken, tok.User), nil
}

// NewSession wraps an existing bearer token.
func (c *Client) NewSession(token string, user UserInfo) *Session {
	return &Session{client: c, token: token, user: user}
}

// Register creates an account. Registering a platform admin needs an admin
// session; use Session.Register for that.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	var user UserInfo
	if err := c.call(ctx, "", http.MethodPost, "/users", nil, req, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// SendCode asks the service to mail a verification code to email.
func (c *Client) SendCode(ctx context.Context, email string) (*CodeResponse, error) {
	var out CodeResponse
	path := "/sendemailcode/" + url.PathEscape(email)
	if err := c.call(ctx, "", http.MethodGet, path, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCode consumes code for email.
func (c *Client) ValidateCode(ctx context.Context, email, code string) (*CodeResponse, error) {
	var out CodeResponse
	path := "/validateemailcode/" + url.PathEscape(email) + "/" + url.PathEscape(code)
	if err := c.call(ctx, "", http.MethodGet, path, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail consumes a code and activates the matching account.
func (c *Client) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	return c.call(ctx, "", http.MethodPost, "/verifyemail", nil, req, nil, http.StatusOK)
}

// ResetPassword sets a new password and returns a fresh token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.call(ctx, "", http.MethodPost, "/resetpassword", nil, req, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Bootstrap creates the first platform admin using the configured token.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	headers := map[string]string{"X-Bootstrap-Token": token}
	if err := c.call(ctx, "", http.MethodPost, "/bootstrap", headers, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, "", http.MethodGet, "/livez", nil, nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, "", http.MethodGet, "/readyz", nil, nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// call sends in as JSON (when non-nil), checks the status and decodes the
// envelope's data into out (when non-nil).
func (c *Client) call(
	ctx context.Context,
	token, method, path string,
	headers map[string]string,
	in, out any,
	expectedStatus int,
) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, raw)
	}
	if out == nil {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
