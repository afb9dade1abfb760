package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultLoginPath  = "/auth/login"
	defaultLogoutPath = "/auth/logout"
	defaultMePath     = "/auth/me"
	maxErrorBodySize  = 64 << 10
)

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// UserInfo is the identity returned by the "me" endpoint.
type UserInfo struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// SuccessBody is the optional {title, message} carried by mutation responses.
type SuccessBody struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// Reporter receives every failed request so it can be surfaced to the user.
type Reporter interface {
	ReportCollaboratorFailure(f Failure)
}

// Client talks to the back-office REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loginPath  string
	logoutPath string
	mePath     string

	mu       sync.RWMutex
	tokens   oauth2.TokenSource
	reporter Reporter
}

// ClientOption modifies a Client at construction.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithEndpoints overrides the auth endpoint paths (relative to the base URL).
func WithEndpoints(loginPath, logoutPath, mePath string) ClientOption {
	return func(c *Client) {
		c.loginPath, c.logoutPath, c.mePath = loginPath, logoutPath, mePath
	}
}

// WithTokenSource sets the source of the Bearer token attached to requests.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithReporter sets the failure reporter.
func WithReporter(r Reporter) ClientOption {
	return func(c *Client) {
		c.reporter = r
	}
}

// New creates a Client for the backend rooted at baseURL (for example "http://localhost:8080/api").
func New(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		loginPath:  defaultLoginPath,
		logoutPath: defaultLogoutPath,
		mePath:     defaultMePath,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// UseTokenSource replaces the token source. The session store is usually
// created after the client, so it is attached here.
func (c *Client) UseTokenSource(ts oauth2.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// UseReporter replaces the failure reporter.
func (c *Client) UseReporter(r Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporter = r
}

// LoginPath returns the login endpoint path.
func (c *Client) LoginPath() string {
	return c.loginPath
}

// Login posts the credentials to the login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	in := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, c.loginPath, in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout posts to the logout endpoint with the current token, if any.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.logoutPath, struct{}{}, nil, true)
}

// Me returns the identity behind the current token. Failures are not
// reported: a rejected token on a session probe is expected.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.do(ctx, http.MethodGet, c.mePath, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Do performs a JSON request against path. in is encoded as the request body
// when non-nil; out receives the decoded response when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, report bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "[Client.Do] marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return errors.Wrap(err, "[Client.Do] new request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if path != c.loginPath {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&Failure{Method: method, Path: path, TransportMessage: err.Error(), Err: err}, report)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		title, message := parseErrorBody(raw)
		return c.fail(&Failure{
			Status:            resp.StatusCode,
			Method:            method,
			Path:              path,
			StructuredTitle:   title,
			StructuredMessage: message,
			TransportMessage:  http.StatusText(resp.StatusCode),
		}, report)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "[Client.Do] decode %s %s", method, path)
	}
	return nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) authorize(req *http.Request) {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return
	}
	tok, err := ts.Token()
	if err != nil || !tok.Valid() {
		return
	}
	tok.SetAuthHeader(req)
}

func (c *Client) fail(f *Failure, report bool) error {
	log.Debug().Str("method", f.Method).Str("path", f.Path).Int("status", f.Status).Msg("collaborator request failed")

	c.mu.RLock()
	reporter := c.reporter
	c.mu.RUnlock()
	if report && reporter != nil {
		reporter.ReportCollaboratorFailure(*f)
	}
	return f
}
