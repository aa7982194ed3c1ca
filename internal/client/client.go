package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"filament-inventory-api/internal/model"

	"golang.org/x/exp/slog"
)

// Client talks to the filament inventory API.
type Client struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the API rooted at baseURL. An empty baseURL makes
// every request path relative, which only works behind a custom transport.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:       slog.Default(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "spoolctl/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("component", "api_client"))
	return c
}

// ListFilaments fetches every record.
func (c *Client) ListFilaments(ctx context.Context) ([]model.Filament, error) {
	var out []model.Filament
	if err := c.do(ctx, SourceLoad, http.MethodGet, "/api/filaments", "", nil, &out, "Failed to load inventory"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Filament{}
	}
	return out, nil
}

// VerifyPasscode checks token against the server.
func (c *Client) VerifyPasscode(ctx context.Context, token string) error {
	var out model.OK
	return c.do(ctx, SourceAuthVerify, http.MethodGet, "/api/auth/verify", token, nil, &out, "Unable to verify passcode")
}

// CreateFilament stores d and returns the persisted record.
func (c *Client) CreateFilament(ctx context.Context, d model.Draft, token string) (*model.Filament, error) {
	var out model.Filament
	if err := c.do(ctx, SourceCreate, http.MethodPost, "/api/filaments", token, d, &out, "Create failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFilament overwrites id with d and returns the persisted record.
func (c *Client) UpdateFilament(ctx context.Context, id int64, d model.Draft, token string) (*model.Filament, error) {
	var out model.Filament
	if err := c.do(ctx, SourceUpdate, http.MethodPut, filamentPath(id), token, d, &out, "Update failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFilament removes id.
func (c *Client) DeleteFilament(ctx context.Context, id int64, token string) error {
	var out model.OK
	return c.do(ctx, SourceDelete, http.MethodDelete, filamentPath(id), token, nil, &out, "Delete failed")
}

func filamentPath(id int64) string {
	return "/api/filaments/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, source OperationSource, method, path, token string, body, out interface{}, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Source: source, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Source: source, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("sending request", slog.String("source", source.String()), slog.String("method", method), slog.String("path", path))

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Source: source, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Source:  source,
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body, fmt.Sprintf("%s (%d)", fallback, resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Source: source, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	return nil
}

// readErrorMessage prefers the body's "error" field, then "message".
func readErrorMessage(r io.Reader, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return fallback
	}
	if body.Error != "" {
		return body.Error
	}
	if body.Message != "" {
		return body.Message
	}
	return fallback
}
