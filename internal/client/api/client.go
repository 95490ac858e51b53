// Package api is the HTTP client for the canvas server: account and token
// endpoints, canvas lifecycle, and the durable operation store consumed by
// the engine. Expired access tokens are refreshed and the request retried
// transparently.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/logging"
)

// TokenStore supplies and rotates the token pair. session.Manager satisfies it.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	UpdateTokens(ctx context.Context, accessToken, refreshToken string) error
}

// Account is the server's view of a user.
type Account struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// AuthResult is what register/login return.
type AuthResult struct {
	User         Account `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

// Canvas is the server's canvas summary.
type Canvas struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Client struct {
	logger  logging.Logger
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func NewClient(logger logging.Logger, baseURL string, tokens TokenStore) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

// BaseURL exposes the configured server address, e.g. for the websocket dialer.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Register(ctx context.Context, username, password, profilePic string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password, "profilePic": profilePic}
	out := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, "/api/register", body, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	out := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCanvas(ctx context.Context, name string, isPrivate bool, password string) (*Canvas, error) {
	body := map[string]any{"name": name, "isPrivate": isPrivate, "password": password}
	out := &Canvas{}
	if err := c.do(ctx, http.MethodPost, "/api/canvases", body, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) JoinCanvas(ctx context.Context, id, password string) (*Canvas, error) {
	body := map[string]string{"password": password}
	out := &Canvas{}
	if err := c.do(ctx, http.MethodPost, "/api/canvases/"+id+"/join", body, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCanvases(ctx context.Context) ([]Canvas, error) {
	var out []Canvas
	if err := c.do(ctx, http.MethodGet, "/api/canvases", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// do runs one request. Authenticated requests that come back 401 trigger a
// token refresh and a single retry; a second 401 is returned as-is.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	status, err := c.roundTrip(ctx, method, path, body, out, authed)
	if err == nil || status != http.StatusUnauthorized || !authed {
		return err
	}

	if refreshErr := c.refresh(ctx); refreshErr != nil {
		return err
	}
	_, err = c.roundTrip(ctx, method, path, body, out, authed)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any, authed bool) (int, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AccessTokenHeaderName, common.AccessTokenScheme+" "+c.tokens.AccessToken())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *Client) refresh(ctx context.Context) error {
	token := c.tokens.RefreshToken()
	if token == "" {
		return common.ErrUnauthorized
	}

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh", map[string]string{"refreshToken": token}, &out, false); err != nil {
		return err
	}
	return c.tokens.UpdateTokens(ctx, out.AccessToken, out.RefreshToken)
}

// statusError maps an HTTP error response back onto the shared sentinels.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrPersistence, msg)
	}
}
