// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

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

	"github.com/google/uuid"

	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/model"
)

const (
	// DefaultBaseURL is where the backend listens by default.
	DefaultBaseURL = "http://localhost:8000"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// RequestIDHeader carries a per-request id for correlating logs.
	RequestIDHeader = "X-Request-ID"
)

// UserAgent is sent with every request.
var UserAgent = "portal/dev"

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to the AI Platform backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logging.Logger
}

// NewClient creates a client for baseURL. tokens may be nil for a client that
// only logs in or registers.
//
// The default HTTP client has no timeout; cancellation comes from the
// request context.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		tokens: tokens,
		log:    logging.Nop(),
	}
}

// WithHTTPClient replaces the HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTimeout bounds every request. Zero means no timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithLogger sets the logger for request diagnostics.
func (c *Client) WithLogger(log *logging.Logger) *Client {
	if log != nil {
		c.log = log
	}
	return c
}

// WithTokenSource sets the token source.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	c.tokens = tokens
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ASSISTANT AND CHAT HISTORY
// =============================================================================

// Reply sends the transcript to the assistant and returns the reply text.
// An absent or empty response field yields "".
func (c *Client) Reply(ctx context.Context, assistantID string, transcript []model.Message) (string, error) {
	var resp AIResponse
	path := "/api/ai/" + url.PathEscape(assistantID)
	if err := c.do(ctx, http.MethodPost, path, AIRequest{Messages: ToWire(transcript)}, true, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", nil
	}
	return *resp.Response, nil
}

// Chats returns the caller's saved chats in server order.
func (c *Client) Chats(ctx context.Context) ([]model.ChatRecord, error) {
	var resp ChatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// Chat returns one full chat record.
func (c *Client) Chat(ctx context.Context, id string) (*model.ChatRecord, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(id), nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Chat, nil
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its token and identity.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Health returns the backend status banner.
func (c *Client) Health(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setHeaders(req, auth); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// setHeaders sets the common headers. The token is read at call time.
func (c *Client) setHeaders(req *http.Request, auth bool) error {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())

	if !auth {
		return nil
	}
	if c.tokens == nil {
		return ErrNoToken
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// readResponse reads and returns the response body with size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
