package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Identity endpoints served by the inventory API.
const (
	DefaultPrimaryPath  = "/api/v1/auth/me"
	DefaultFallbackPath = "/api/v1/users/me"
)

const maxIdentityBody = 1 << 20

// ErrUnauthorized is returned when the identity service rejects the token.
var ErrUnauthorized = errors.New("identity check unauthorized")

// StatusError reports an unexpected identity response status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("identity check %s returned status %d", e.Path, e.Code)
}

// Verifier resolves the roles behind a token.
type Verifier interface {
	Roles(ctx context.Context, token string) (RoleSet, error)
}

// ClientConfig holds configuration for an IdentityClient.
type ClientConfig struct {
	BaseURL      string
	PrimaryPath  string
	FallbackPath string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// IdentityClient asks the identity endpoints which roles a token carries.
// A 404 from the primary endpoint moves on to the fallback; a 401 from
// either ends the check.
type IdentityClient struct {
	baseURL      string
	primaryPath  string
	fallbackPath string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewIdentityClient creates a client. Empty paths get the defaults.
func NewIdentityClient(cfg ClientConfig) *IdentityClient {
	if cfg.PrimaryPath == "" {
		cfg.PrimaryPath = DefaultPrimaryPath
	}
	if cfg.FallbackPath == "" {
		cfg.FallbackPath = DefaultFallbackPath
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &IdentityClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		primaryPath:  cfg.PrimaryPath,
		fallbackPath: cfg.FallbackPath,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}
}

// Roles runs the identity check for token.
func (c *IdentityClient) Roles(ctx context.Context, token string) (RoleSet, error) {
	body, err := c.fetch(ctx, c.primaryPath, token)
	var status *StatusError
	if errors.As(err, &status) && status.Code == http.StatusNotFound {
		c.logger.Debug("primary identity endpoint missing, trying fallback",
			zap.String("path", c.fallbackPath))
		body, err = c.fetch(ctx, c.fallbackPath, token)
	}
	if err != nil {
		return nil, err
	}

	resp, err := ParseIdentity(body)
	if err != nil {
		return nil, err
	}
	return NormalizeRoles(resp), nil
}

func (c *IdentityClient) fetch(ctx context.Context, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}
	return body, nil
}

var _ Verifier = (*IdentityClient)(nil)
