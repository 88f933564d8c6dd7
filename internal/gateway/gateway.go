// Package gateway issues every call to the remote inventory API. It injects
// the bearer credential from the session store, and it is the one place that
// reacts to a 401: clear the credential, notify observers, fail the call.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/metrics"
	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Gateway struct {
	store   session.Store
	client  *http.Client
	baseURL string
}

func New(store session.Store, baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

type requestOptions struct {
	header http.Header
	route  string
}

type Option func(*requestOptions)

// WithRoute sets the route template recorded as the metric path label, e.g.
// "/sales/{id}". Metrics must never label by concrete ids or query strings,
// or every distinct request mints a new time series.
func WithRoute(route string) Option {
	return func(o *requestOptions) {
		o.route = route
	}
}

// WithHeader adds a header to the outgoing request. Authorization is owned
// by the gateway and cannot be overridden.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}

		o.header.Set(key, value)
	}
}

// Do issues an authenticated request. body, when non-nil, is JSON-encoded.
// It fails with Unauthenticated before any network activity when no token
// is stored, and with AuthExpired after clearing the store when the server
// answers 401. Every other status passes through to the caller.
func (g *Gateway) Do(ctx context.Context, method, path string, body any, opts ...Option) (*http.Response, error) {

	token, ok := g.store.Token()
	if !ok {
		return nil, apperrors.UnauthenticatedError("No session token present")
	}

	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.InternalError("Failed to encode request body").WithError(err)
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return nil, apperrors.InternalError("Failed to build request").WithError(err)
	}

	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	for key, values := range options.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	route := options.route
	if route == "" {
		route, _, _ = strings.Cut(path, "?")
	}

	start := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.ObserveAPICall(method, route, 0, time.Since(start))

		return nil, apperrors.NetworkFailureError("Inventory API is unreachable").WithError(err)
	}

	metrics.ObserveAPICall(method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		DrainBody(resp)

		// The credential is dead. Clearing the store broadcasts the logout
		// to every subscriber; the caller must not retry with this token.
		_ = g.store.Clear()

		return nil, apperrors.AuthExpiredError("Session token was rejected by the server")
	}

	return resp, nil
}

// Login exchanges operator credentials for a bearer token. The endpoint
// expects an OAuth2 password form with the unused fields present but empty.
func (g *Gateway) Login(ctx context.Context, username, password string) error {

	form := url.Values{
		"grant_type":    {""},
		"username":      {username},
		"password":      {password},
		"scope":         {""},
		"client_id":     {""},
		"client_secret": {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.InternalError("Failed to build login request").WithError(err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.ObserveAPICall(http.MethodPost, "/auth/login", 0, time.Since(start))

		return apperrors.NetworkFailureError("Inventory API is unreachable").WithError(err)
	}

	metrics.ObserveAPICall(http.MethodPost, "/auth/login", resp.StatusCode, time.Since(start))

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.UnauthenticatedError("Invalid credentials").WithDetail(ResponseDetail(resp))
	}

	var tokenResp models.TokenResponse

	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return apperrors.InternalError("Failed to parse login response").WithError(err)
	}

	if tokenResp.AccessToken == "" {
		return apperrors.InternalError("Login response carried no access token")
	}

	return g.store.SetToken(tokenResp.AccessToken)
}

// Logout discards the stored credential and notifies observers.
func (g *Gateway) Logout() error {
	return g.store.Clear()
}

// DecodeJSON decodes and closes a response body.
func DecodeJSON(resp *http.Response, dest any) error {
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.InternalError("Failed to parse server response").WithError(err)
	}

	return nil
}

// DrainBody discards and closes a response body so the connection can be
// reused.
func DrainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// APIError converts a non-2xx response into an AppError, preferring the
// parsed JSON "detail" field the server uses and falling back to raw text.
// The body is consumed and closed.
func APIError(resp *http.Response) *apperrors.AppError {
	detail := ResponseDetail(resp)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperrors.NotFoundError("Resource not found").WithDetail(detail)
	default:
		return apperrors.BadRequestError(
			fmt.Sprintf("Inventory API returned status %d", resp.StatusCode),
		).WithDetail(detail)
	}
}

// ResponseDetail extracts a human-readable error detail from a response
// body: the JSON "detail" field when present, raw text otherwise. The body
// is consumed and closed.
func ResponseDetail(resp *http.Response) string {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return ""
	}

	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(data, &parsed); err == nil && len(parsed.Detail) > 0 {
		var text string
		if err := json.Unmarshal(parsed.Detail, &text); err == nil {
			return text
		}

		return string(parsed.Detail)
	}

	return string(data)
}
