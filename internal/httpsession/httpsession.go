// Package httpsession manages per-project authenticated HTTP sessions
// for the web-mode endpoint tester (spec.md §4.8 "HTTP session &
// endpoint testing"): cookie-jar-backed sessions cached in a TTL-LRU,
// CSRF token extraction, login detection, and request execution.
package httpsession

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chainguard-dev/chainguard/internal/cache"
	"github.com/chainguard-dev/chainguard/internal/chainerr"
)

// MaxBodyCapture bounds how much of a response body is read and returned
// to the agent, to keep tool results small (spec.md §4.8).
const MaxBodyCapture = 16 * 1024

// Session is one authenticated HTTP session for a project.
type Session struct {
	BaseURL    string
	client     *http.Client
	csrfFields []string
}

// Manager caches sessions per project in a TTL-LRU (spec.md §4.8:
// "cap 50, TTL 24h").
type Manager struct {
	sessions   *cache.TTLCache[*Session]
	csrfFields []string
}

// NewManager creates a session manager with the given capacity, TTL, and
// CSRF field name candidates (config.HTTP.CSRFFieldNames).
func NewManager(capacity int, ttl time.Duration, csrfFields []string) *Manager {
	return &Manager{
		sessions:   cache.NewTTLCache[*Session](capacity, ttl),
		csrfFields: csrfFields,
	}
}

// Ensure returns the cached session for projectID, creating one bound
// to baseURL if absent (spec.md §4.8 "ensure_session silently re-logs-in
// if needed" — re-login itself is driven by the caller detecting an
// auth-required response and calling Login again).
func (m *Manager) Ensure(projectID, baseURL string) *Session {
	if s, ok := m.sessions.Get(projectID); ok {
		return s
	}
	s := m.newSession(baseURL)
	m.sessions.Set(projectID, s)
	return s
}

func (m *Manager) newSession(baseURL string) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		BaseURL:    baseURL,
		client:     &http.Client{Jar: jar, Timeout: 15 * time.Second},
		csrfFields: m.csrfFields,
	}
}

// Forget evicts a project's session (e.g. after a credentials change).
func (m *Manager) Forget(projectID string) { m.sessions.Delete(projectID) }

var csrfMetaRe = regexp.MustCompile(`(?i)<meta[^>]+name=["']csrf-token["'][^>]+content=["']([^"']+)["']`)

// csrfInputRe matches a hidden input for one of the known field names;
// built per-session since the field name list is configurable.
func csrfInputRe(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<input[^>]+name=["']` + regexp.QuoteMeta(field) + `["'][^>]+value=["']([^"']+)["']`)
}

// extractCSRF scans an HTML body for a CSRF token under any configured
// field name, or the common <meta name="csrf-token"> convention.
func (s *Session) extractCSRF(body string) (field, token string) {
	if m := csrfMetaRe.FindStringSubmatch(body); len(m) == 2 {
		return "csrf-token", m[1]
	}
	for _, f := range s.csrfFields {
		if m := csrfInputRe(f).FindStringSubmatch(body); len(m) == 2 {
			return f, m[1]
		}
	}
	return "", ""
}

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	Success    bool
	StatusCode int
	Message    string
}

// Login performs a form POST login: GET loginPath to pick up any CSRF
// token and cookies, then POST credentials merged with that token.
func (s *Session) Login(ctx context.Context, loginPath string, credentials map[string]string) (LoginResult, error) {
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resolve(loginPath), nil)
	if err != nil {
		return LoginResult{}, chainerr.Wrap(chainerr.InvalidInput, "building login GET request", err)
	}
	getResp, err := s.client.Do(getReq)
	if err != nil {
		if ctx.Err() != nil {
			return LoginResult{}, chainerr.Wrap(chainerr.Timeout, "fetching login page", err)
		}
		return LoginResult{}, chainerr.Wrap(chainerr.HTTPFail, "fetching login page", err)
	}
	body, _ := io.ReadAll(io.LimitReader(getResp.Body, MaxBodyCapture))
	getResp.Body.Close()

	form := url.Values{}
	for k, v := range credentials {
		form.Set(k, v)
	}
	if field, token := s.extractCSRF(string(body)); field != "" && field != "csrf-token" {
		form.Set(field, token)
	}

	postReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(loginPath), strings.NewReader(form.Encode()))
	if err != nil {
		return LoginResult{}, chainerr.Wrap(chainerr.InvalidInput, "building login POST request", err)
	}
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(postReq)
	if err != nil {
		if ctx.Err() != nil {
			return LoginResult{}, chainerr.Wrap(chainerr.Timeout, "performing login", err)
		}
		return LoginResult{}, chainerr.Wrap(chainerr.HTTPFail, "performing login", err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode < 400 && resp.StatusCode != 401 && resp.StatusCode != 403
	return LoginResult{Success: ok, StatusCode: resp.StatusCode}, nil
}

func (s *Session) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// EndpointResult is the outcome of testing one HTTP endpoint.
type EndpointResult struct {
	Path          string `json:"path"`
	Method        string `json:"method"`
	StatusCode    int    `json:"status_code"`
	AuthRequired  bool   `json:"auth_required"`
	BodyExcerpt   string `json:"body_excerpt,omitempty"`
	Error         string `json:"error,omitempty"`
}

var loginFormRe = regexp.MustCompile(`(?i)<form[^>]*>[\s\S]{0,2000}?type=["']password["']`)

// TestEndpoint issues a request against path and classifies the
// response, including spec.md §4.8's auth-required heuristics: a 401/403,
// a redirect to something that looks like a login path, or a 200
// response whose body contains a password-field login form.
func (s *Session) TestEndpoint(ctx context.Context, method, path string, body io.Reader) (EndpointResult, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(path), body)
	if err != nil {
		return EndpointResult{}, chainerr.Wrap(chainerr.InvalidInput, "building request", err)
	}

	noRedirectClient := *s.client
	var lastLocation string
	noRedirectClient.CheckRedirect = func(r *http.Request, via []*http.Request) error {
		lastLocation = r.URL.String()
		return http.ErrUseLastResponse
	}

	resp, err := noRedirectClient.Do(req)
	if err != nil {
		return EndpointResult{Path: path, Method: method, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxBodyCapture))
	excerpt := string(raw)

	result := EndpointResult{
		Path:        path,
		Method:      method,
		StatusCode:  resp.StatusCode,
		BodyExcerpt: excerpt,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		result.AuthRequired = true
	case resp.StatusCode >= 300 && resp.StatusCode < 400 && looksLikeLogin(resp.Header.Get("Location")):
		result.AuthRequired = true
	case resp.StatusCode >= 300 && resp.StatusCode < 400 && looksLikeLogin(lastLocation):
		result.AuthRequired = true
	case resp.StatusCode == http.StatusOK && loginFormRe.MatchString(excerpt):
		result.AuthRequired = true
	}

	return result, nil
}

func looksLikeLogin(location string) bool {
	l := strings.ToLower(location)
	return strings.Contains(l, "login") || strings.Contains(l, "signin") || strings.Contains(l, "sign-in")
}
