package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
)

// TokenSource yields the current bearer token, empty when anonymous.
// The session store owns the token; transport only reads it per request.
type TokenSource func() string

// Client is the single HTTP client every resource endpoint goes through.
// It attaches credentials, bounds request time, and normalizes failures
// into the error taxonomy in errors.go. It never touches session or cache
// state itself.
type Client struct {
	http        *resty.Client
	log         zerolog.Logger
	onAuthError func()
}

func New(cfg config.APIConfig, tokens TokenSource, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http: httpClient,
		log:  log.With().Str("component", "transport").Logger(),
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-Id", uuid.NewString())
		if tokens != nil {
			if tok := tokens(); tok != "" {
				req.SetHeader("Authorization", "Bearer "+tok)
			}
		}
		return nil
	})

	return c
}

// SetAuthFailureHook registers a callback fired once per 401 response.
// The client context wires this to the session store so a server-signaled
// credential rejection clears local auth state.
func (c *Client) SetAuthFailureHook(fn func()) {
	c.onAuthError = fn
}

// errorBody covers the message shapes the API uses across endpoints.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// Do executes one request. On 2xx the response body is decoded into out
// (when non-nil); any non-2xx response becomes an *APIError and transport
// failures are wrapped with ErrNetwork.
func (c *Client) Do(ctx context.Context, method, path string, body any, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	var srvErr errorBody
	req.SetError(&srvErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.IsError() {
		apiErr := &APIError{
			StatusCode: resp.StatusCode(),
			Message:    srvErr.Message,
			Fields:     srvErr.Errors,
		}
		if apiErr.Message == "" {
			apiErr.Message = srvErr.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		c.log.Warn().
			Int("status", resp.StatusCode()).
			Str("method", method).
			Str("path", path).
			Str("message", apiErr.Message).
			Msg("request rejected")
		if apiErr.StatusCode == http.StatusUnauthorized && c.onAuthError != nil {
			c.onAuthError()
		}
		return apiErr
	}

	return nil
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, query, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, nil, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, nil, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}
