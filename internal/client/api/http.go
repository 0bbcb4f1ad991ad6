package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fitlifeapp/fitlife/internal/common"
)

// HTTPClient is the HTTP/JSON implementation of Client.
//
// The bearer token is attached to outgoing requests iff it is non-empty;
// SetToken("") detaches it. Safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient constructs a client bound to the identity API base URL,
// e.g. "http://localhost:5000/api/auth".
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues a JSON request and decodes a 2xx body into out (if non-nil).
// Transport failures map to ErrUnavailable; non-2xx responses become
// *APIError with the server's {message} body when present.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg MessageResponse
		if b, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); readErr == nil {
			_ = json.Unmarshal(b, &msg)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	body := map[string]string{"email": email}
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/forgot-password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	body := map[string]string{"email": email, "otp": otp}
	var resp VerifyOTPResponse
	if err := c.do(ctx, http.MethodPost, "/verify-otp", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, tempToken, password string) (*MessageResponse, error) {
	body := map[string]string{"email": email, "tempToken": tempToken, "password": password}
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/reset-password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, partial map[string]any) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodPut, "/profile", partial, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PhotoUploadURL(ctx context.Context, contentType string) (*PhotoUploadURLResponse, error) {
	body := map[string]string{"contentType": contentType}
	var resp PhotoUploadURLResponse
	if err := c.do(ctx, http.MethodPost, "/profile/photo-url", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
