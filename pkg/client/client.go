package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/pkg/domain"
)

// DefaultTimeout bounds a single request. Ingestion can take a while on the
// backend, so it is generous.
const DefaultTimeout = 2 * time.Minute

// Client is the Real Estate Assistant API client. Session credentials travel
// as cookies, plus a bearer token when the backend issued one at login.
type Client struct {
	baseURL    string
	base       *url.URL
	httpClient *http.Client
	jar        *resettableJar
	store      *Store
	log        *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithStore persists credentials through s and preloads whatever it holds.
func WithStore(s *Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithToken seeds the bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client.New: invalid base URL %q", baseURL)
	}
	jar, err := newResettableJar()
	if err != nil {
		return nil, fmt.Errorf("client.New: cookie jar: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		base:    base,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		jar: jar,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store != nil {
		token, cookies, err := c.store.Load()
		if err != nil {
			c.log.Warn("ignoring unreadable session file", zap.String("path", c.store.Path()), zap.Error(err))
		} else {
			// An explicit token wins over the stored one.
			if token != "" && c.token == "" {
				c.token = token
			}
			jar.SetCookies(c.base, cookies)
		}
	}
	return c, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasCredentials reports whether a token or any cookie would be sent.
func (c *Client) HasCredentials() bool {
	if c.currentToken() != "" {
		return true
	}
	return len(c.jar.Cookies(c.base)) > 0
}

// GetMe returns the profile of the current session.
func (c *Client) GetMe(ctx context.Context) (*domain.UserProfile, error) {
	var u domain.UserProfile
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// Login exchanges credentials for a session. The backend answers with a
// session cookie, a bearer token, or both. Whatever arrives is persisted
// only when creds.Remember is set.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)
	form.Set("remember", strconv.FormatBool(creds.Remember))

	var raw json.RawMessage
	if err := c.send(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &raw); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	var tok domain.Token
	// The acknowledgement is opaque; a body that is not a token is fine.
	_ = json.Unmarshal(raw, &tok) //nolint:errcheck
	if tok.AccessToken != "" {
		c.setToken(tok.AccessToken)
	}
	if creds.Remember {
		if err := c.Save(); err != nil {
			c.log.Warn("persist session failed", zap.Error(err))
		}
	} else if c.store != nil {
		// Memory only. Drop whatever an earlier login left on disk.
		if err := c.store.Clear(); err != nil {
			c.log.Warn("clear persisted session failed", zap.Error(err))
		}
	}
	return &tok, nil
}

// Logout invalidates the session on the backend. Local credentials are left
// alone; call ClearSession for that.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	if err := c.post(ctx, "/auth/register", reg, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// OAuthLoginURL returns the provider's authorization URL.
func (c *Client) OAuthLoginURL(ctx context.Context, provider string) (string, error) {
	if !domain.ValidProvider(provider) {
		return "", fmt.Errorf("client.OAuthLoginURL: unsupported provider %q", provider)
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, "/auth/"+url.PathEscape(provider)+"-login-url", &resp); err != nil {
		return "", fmt.Errorf("client.OAuthLoginURL: %w", err)
	}
	if resp.URL == "" {
		return "", fmt.Errorf("client.OAuthLoginURL: empty url in response")
	}
	return resp.URL, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, pc domain.PasswordChange) error {
	if err := c.doRequest(ctx, http.MethodPut, "/users/change-password", pc, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// ProcessURLs registers source URLs for later querying.
func (c *Client) ProcessURLs(ctx context.Context, urls []string) error {
	if err := c.post(ctx, "/process/process-urls", map[string][]string{"urls": urls}, nil); err != nil {
		return fmt.Errorf("client.ProcessURLs: %w", err)
	}
	return nil
}

// Query asks a question against the previously registered sources.
func (c *Client) Query(ctx context.Context, question string) (*domain.QueryResponse, error) {
	var resp domain.QueryResponse
	if err := c.post(ctx, "/process/query", map[string]string{"question": question}, &resp); err != nil {
		return nil, fmt.Errorf("client.Query: %w", err)
	}
	return &resp, nil
}

// Save persists the current token and cookies. It is a no-op without a store.
func (c *Client) Save() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.currentToken(), c.jar.snapshot(c.base))
}

// ClearSession forgets the token and cookies, in memory and on disk.
func (c *Client) ClearSession() error {
	if err := c.jar.reset(); err != nil {
		return fmt.Errorf("client.ClearSession: %w", err)
	}
	c.setToken("")
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			return fmt.Errorf("client.ClearSession: %w", err)
		}
	}
	return nil
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, reqBody, contentType, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug("request done",
		zap.String("method", method), zap.String("path", path),
		zap.String("request_id", reqID), zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
