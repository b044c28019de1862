package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/okian/avaliece/internal/domain/view"
)

// Client is a cookie-carrying HTTP client for the dashboard.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client for baseURL with its own cookie jar.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			// Redirect statuses are part of what is being checked.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.client.Do(req)
}

// drain reads and closes the response body so the connection is reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to dashboard: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Login posts the login form; the session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := c.do(ctx, http.MethodPost, "/login", form)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusSeeOther:
		return nil
	case http.StatusUnauthorized:
		return ErrLoginRejected
	default:
		return fmt.Errorf("login: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

// Logout posts the logout form.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", url.Values{})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusSeeOther {
		return fmt.Errorf("logout: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// View fetches /api/view for the given query. The returned status is set
// even when err is nil so callers can tell 401 apart.
func (c *Client) View(ctx context.Context, query url.Values) (view.Model, int, error) {
	path := "/api/view"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return view.Model{}, 0, fmt.Errorf("view: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return view.Model{}, resp.StatusCode, nil
	}
	var m view.Model
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return view.Model{}, resp.StatusCode, fmt.Errorf("decode view: %w", err)
	}
	return m, resp.StatusCode, nil
}
