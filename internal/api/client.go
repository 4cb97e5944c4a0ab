package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/galley/internal/recipe"
)

// Credentials supplies the bearer token for outgoing requests and hears about
// rejected ones. Rejected receives the token that was attached when the
// request was issued, which may differ from the current one by then.
type Credentials interface {
	Token() string
	Rejected(issuedToken string)
}

// Client talks to the recipes REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	creds     Credentials
	logger    *slog.Logger
}

const (
	defaultBaseURL   = "http://localhost:6969/api"
	defaultUserAgent = "galley/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds an anonymous Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithCredentials returns a copy of c that authenticates with creds. The
// receiver is left anonymous.
func (c *Client) WithCredentials(creds Credentials) *Client {
	dup := *c
	dup.creds = creds
	return &dup
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// LoginResponse is the body of POST /users/login.
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Registration is the body of POST /users/register.
type Registration struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := Registration{Email: email, Password: password}
	if err := c.sendJSON(ctx, http.MethodPost, "/users/login", body, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.sendJSON(ctx, http.MethodPost, "/users/register", reg, nil)
}

// ListRecipes returns every recipe, accepting both list and paginated shapes.
func (c *Client) ListRecipes(ctx context.Context) ([]recipe.Backend, error) {
	data, err := c.fetch(ctx, http.MethodGet, "/recipes", nil, "")
	if err != nil {
		return nil, err
	}
	return recipe.DecodeList(data)
}

// GetRecipe returns one recipe.
func (c *Client) GetRecipe(ctx context.Context, id string) (recipe.Backend, error) {
	data, err := c.fetch(ctx, http.MethodGet, recipePath(id), nil, "")
	if err != nil {
		return nil, err
	}
	return recipe.DecodeOne(data)
}

// CreateRecipe posts a new recipe.
func (c *Client) CreateRecipe(ctx context.Context, s recipe.Submission) (recipe.Backend, error) {
	return c.submit(ctx, http.MethodPost, "/recipes", s)
}

// UpdateRecipe replaces the recipe with the given id.
func (c *Client) UpdateRecipe(ctx context.Context, id string, s recipe.Submission) (recipe.Backend, error) {
	return c.submit(ctx, http.MethodPut, recipePath(id), s)
}

// DeleteRecipe removes the recipe with the given id.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	_, err := c.fetch(ctx, http.MethodDelete, recipePath(id), nil, "")
	return err
}

// FetchPhoto downloads a stored photo and reports its declared content type.
func (c *Client) FetchPhoto(ctx context.Context, name string) ([]byte, string, error) {
	rel := &url.URL{Path: "/recipes/photo/" + name, RawPath: "/recipes/photo/" + url.PathEscape(name)}
	resp, err := c.doURL(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read photo: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) submit(ctx context.Context, method, path string, s recipe.Submission) (recipe.Backend, error) {
	body, contentType, err := encodeSubmission(s)
	if err != nil {
		return nil, err
	}
	data, err := c.fetch(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return recipe.Backend{}, nil
	}
	b, err := recipe.DecodeOne(data)
	if err != nil {
		// The write succeeded; an odd echo body is not worth failing it.
		c.logger.Debug("unparseable submit response", "path", path, "error", err)
		return recipe.Backend{}, nil
	}
	return b, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data, err := c.fetch(ctx, method, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	resp, err := c.doURL(ctx, method, &url.URL{Path: path}, body, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// doURL issues the request and returns the response for 2xx/3xx statuses.
// Error statuses are drained into an *Error.
func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body io.Reader, contentType string) (*http.Response, error) {
	reqURL := c.resolve(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json, image/*;q=0.9, */*;q=0.8")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Capture the token now: a rejection must be judged against the session
	// that issued the request, not whatever session exists when it returns.
	var issued string
	if c.creds != nil {
		issued = c.creds.Token()
	}
	if issued != "" {
		req.Header.Set("Authorization", "Bearer "+issued)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", rel.Path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.logger.Debug("request done", "method", method, "path", rel.Path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 400 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()
	apiErr := newError(method, rel.Path, resp.StatusCode, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
		c.creds.Rejected(issued)
	}
	return nil, apiErr
}

// resolve joins rel onto the base path, keeping any base prefix such as /api.
func (c *Client) resolve(rel *url.URL) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + rel.Path
	if rel.RawPath != "" {
		u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + rel.RawPath
	}
	u.RawQuery = rel.RawQuery
	return u.String()
}

func recipePath(id string) string {
	return "/recipes/" + url.PathEscape(strings.TrimSpace(id))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
