// Package gateway is the single chokepoint for every call to the hospital
// API. It owns the token lifecycle: proactive renewal when expiry is near, a
// background expiry watch, uniform classification of HTTP outcomes, and the
// forced logout that ends a session on unrecoverable auth failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sigh/sigh/internal/platform/session"
)

const (
	loginPath = "/login"
	renewPath = "/renovar-token"
	validPath = "/validar-token"
)

const (
	defaultRenewWindow   = 5 * time.Minute
	defaultCheckInterval = 60 * time.Second
	defaultLogoutDelay   = 5 * time.Minute
	defaultHTTPTimeout   = 30 * time.Second
)

// Client dispatches authenticated requests against the hospital API.
// Exactly one Client exists per running application; domain services are
// thin wrappers around Dispatch.
type Client struct {
	http    *http.Client
	baseURL string
	store   session.Store
	log     zerolog.Logger

	renewWindow   time.Duration
	checkInterval time.Duration
	logoutDelay   time.Duration

	// renewing is the single-renewal-in-flight guard. Callers that lose the
	// CAS proceed with the current token instead of queueing.
	renewing atomic.Bool

	watchMu       sync.Mutex
	watchStop     chan struct{}
	delayedLogout *time.Timer

	logoutHook func()
	warnHook   func()

	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRenewWindow sets how close to expiry a token may get before Dispatch
// renews it.
func WithRenewWindow(d time.Duration) Option {
	return func(c *Client) { c.renewWindow = d }
}

// WithCheckInterval sets the expiry-watch polling interval.
func WithCheckInterval(d time.Duration) Option {
	return func(c *Client) { c.checkInterval = d }
}

// WithLogoutDelay sets how long the expiry watch waits between warning the
// user and forcing logout.
func WithLogoutDelay(d time.Duration) Option {
	return func(c *Client) { c.logoutDelay = d }
}

// WithLogoutHook registers a callback invoked after every forced logout,
// once the session is already cleared. The interactive front-end redirects
// to the login screen here; the CLI prints a sign-in-again notice.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.logoutHook = fn }
}

// WithWarnHook registers a callback invoked once per expiry-watch cycle when
// the token enters the renewal window.
func WithWarnHook(fn func()) Option {
	return func(c *Client) { c.warnHook = fn }
}

// withClock overrides the wall clock. Tests only.
func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a gateway client for the API at baseURL, keeping its
// session in store.
func NewClient(baseURL string, store session.Store, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http:          &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		store:         store,
		log:           log,
		renewWindow:   defaultRenewWindow,
		checkInterval: defaultCheckInterval,
		logoutDelay:   defaultLogoutDelay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the uniform envelope every dispatch resolves to. Data holds
// the raw JSON body; 404 responses carry an empty array and 204 responses
// carry nil.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Decode unmarshals the response data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// LoginResult is the outcome of a Login call. Login never returns an error;
// every failure is folded into Success=false plus a message.
type LoginResult struct {
	Success bool
	Message string
}

type loginResponse struct {
	Token           string      `json:"token"`
	StaffName       string      `json:"nombres_personal"`
	EstablishmentID json.Number `json:"id_establecimiento"`
	Establishment   string      `json:"establecimiento"`
	UserTypeID      json.Number `json:"id_tipo_usuario"`
}

// Login authenticates against POST /login. On success the token and profile
// attributes are persisted and the background expiry watch starts. On any
// failure the session slot is left empty.
func (c *Client) Login(ctx context.Context, username, password string) LoginResult {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.Dispatch(ctx, http.MethodPost, loginPath, body)
	if err != nil {
		c.store.Clear()
		c.log.Warn().Err(err).Msg("login failed")
		return LoginResult{Success: false, Message: err.Error()}
	}

	if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
		c.store.Clear()
		msg := extractMessage(resp.Data, "credenciales incorrectas")
		return LoginResult{Success: false, Message: msg}
	}

	var payload loginResponse
	if err := resp.Decode(&payload); err != nil || payload.Token == "" {
		c.store.Clear()
		return LoginResult{Success: false, Message: "respuesta de login sin token"}
	}

	c.store.Set(session.KeyToken, payload.Token)
	c.store.Set(session.KeyStaffName, payload.StaffName)
	c.store.Set(session.KeyEstablishmentID, payload.EstablishmentID.String())
	c.store.Set(session.KeyEstablishment, payload.Establishment)
	c.store.Set(session.KeyUserTypeID, payload.UserTypeID.String())
	c.store.Set(session.KeyLastActivity, fmt.Sprintf("%d", c.now().UnixMilli()))

	c.StartExpiryWatch()
	c.log.Info().Str("user", payload.StaffName).Msg("login succeeded")
	return LoginResult{Success: true}
}

// IsSessionValid reports whether the given token is still usable: locally
// unexpired and accepted by GET /validar-token. It only reports; it never
// forces a logout, which is why it bypasses Dispatch.
func (c *Client) IsSessionValid(ctx context.Context, token string) bool {
	if token == "" || expired(token, c.now()) {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+validPath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("token validation request failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// RequestOption customizes a single dispatch.
type RequestOption func(*http.Request)

// WithHeader sets an extra header on the outgoing request, overriding the
// gateway defaults on collision.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Dispatch issues an authenticated request and classifies the outcome:
//
//   - 404 resolves to {404, []} — "no results", not an error
//   - 400 resolves to {400, body} so callers can render field-level feedback
//   - 401/403 force logout and return an *APIError
//   - any other non-2xx returns an *APIError without touching the session
//   - 204 resolves to {204, nil}; other 2xx to {status, body}
//
// When the stored token is inside the renewal window, Dispatch renews it
// before sending — unless another renewal is already in flight, in which
// case the current token is used as-is for this one call. Transport-level
// failures end the session (conservative default, matching the production
// front-end) except when they originate in the renewal step, which owns its
// own logout.
func (c *Client) Dispatch(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	skipRenewal := path == loginPath || path == renewPath

	if !skipRenewal {
		token := c.store.Get(session.KeyToken)
		if token != "" && aboutToExpire(token, c.renewWindow, c.now()) {
			if c.renewing.CompareAndSwap(false, true) {
				_, err := c.renewToken(ctx)
				c.renewing.Store(false)
				if err != nil {
					// renewToken already forced logout.
					return nil, err
				}
			}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.store.Get(session.KeyToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		if !skipRenewal {
			// A dead connection on an authenticated call ends the session so
			// the app cannot keep retrying against a session the server may
			// have already discarded.
			c.Logout()
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Response{Status: resp.StatusCode, Data: json.RawMessage("[]")}, nil

	case resp.StatusCode == http.StatusBadRequest:
		return &Response{Status: resp.StatusCode, Data: data}, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.Logout()
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: extractMessage(data, "no autorizado, sesión cerrada"),
			Body:    data,
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: extractMessage(data, http.StatusText(resp.StatusCode)),
			Body:    data,
		}

	case resp.StatusCode == http.StatusNoContent:
		return &Response{Status: resp.StatusCode}, nil

	default:
		return &Response{Status: resp.StatusCode, Data: data}, nil
	}
}

// renewToken exchanges the current token for a fresh one via POST
// /renovar-token. Every failure path forces logout before returning, so a
// renewal error always means the session is gone.
func (c *Client) renewToken(ctx context.Context) (string, error) {
	token := c.store.Get(session.KeyToken)
	if token == "" {
		c.Logout()
		return "", fmt.Errorf("renew token: %w", ErrSessionExpired)
	}

	c.store.Set(session.KeyRenewInProgress, "true")
	defer c.store.Delete(session.KeyRenewInProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+renewPath, nil)
	if err != nil {
		c.Logout()
		return "", fmt.Errorf("renew token: %w", ErrSessionExpired)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("token renewal request failed")
		c.Logout()
		return "", fmt.Errorf("renew token: %w", ErrSessionExpired)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("token renewal rejected")
		c.Logout()
		return "", fmt.Errorf("renew token: %w", ErrSessionExpired)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
		c.Logout()
		return "", fmt.Errorf("renew token: %w", ErrSessionExpired)
	}

	c.store.Set(session.KeyToken, payload.Token)
	c.log.Info().Msg("token renewed")
	return payload.Token, nil
}

// Logout ends the session: clears every stored key, stops the expiry watch
// and any armed delayed logout, and invokes the logout hook. Idempotent.
func (c *Client) Logout() {
	c.stopWatch()

	hadSession := session.Authenticated(c.store)
	c.store.Clear()

	if hadSession {
		c.log.Info().Msg("session closed")
	}
	if c.logoutHook != nil {
		c.logoutHook()
	}
}
