// Package remote is the HTTP client for the portfolio profile service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kalambet/folio/internal/profile"
)

const (
	profilePath = "/api/profile"
	skillsPath  = "/api/skills"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected response status")

// TokenFunc supplies the bearer credential for authenticated calls. It is
// invoked at request time, never cached by the client.
type TokenFunc func() (string, error)

// Client talks to the profile service over HTTP.
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for the service at baseURL. token may be nil, in
// which case authenticated calls fail before any request is sent.
func New(baseURL string, token TokenFunc, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Profile fetches the profile. Absent fields are defaulted during decoding.
func (c *Client) Profile(ctx context.Context) (profile.Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, profilePath, nil, false)
	if err != nil {
		return profile.Profile{}, err
	}
	p, err := decodeProfile(resp)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	return p, nil
}

// Skills fetches the skill list.
func (c *Client) Skills(ctx context.Context) ([]profile.Skill, error) {
	resp, err := c.do(ctx, http.MethodGet, skillsPath, nil, false)
	if err != nil {
		return nil, err
	}
	var skills []profile.Skill
	if err := decodeJSON(resp, &skills); err != nil {
		return nil, fmt.Errorf("fetching skills: %w", err)
	}
	if skills == nil {
		skills = []profile.Skill{}
	}
	return skills, nil
}

// UpdateProfile sends the whole draft with PUT and returns the profile the
// service stored.
func (c *Client) UpdateProfile(ctx context.Context, d profile.FormDraft) (profile.Profile, error) {
	resp, err := c.do(ctx, http.MethodPut, profilePath, d, true)
	if err != nil {
		return profile.Profile{}, err
	}
	p, err := decodeProfile(resp)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// Health reports whether GET /health answers 200.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if c.token == nil {
			return nil, errors.New("no credential provider configured")
		}
		token, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("reading credential: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile service not reachable at %s (%w)", c.baseURL, err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if err != nil {
			return fmt.Errorf("%w: %d (failed to read body: %v)", ErrStatus, resp.StatusCode, err)
		}
		return fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("decoding response: unexpected data after JSON value")
	}
	return nil
}

// decodeProfile decodes a profile body. A JSON null is not a profile.
func decodeProfile(resp *http.Response) (profile.Profile, error) {
	var p *profile.Profile
	if err := decodeJSON(resp, &p); err != nil {
		return profile.Profile{}, err
	}
	if p == nil {
		return profile.Profile{}, errors.New("decoding response: null profile")
	}
	return *p, nil
}
