// Package api is the gateway to the production backend. Every call is bound by
// a fixed timeout and fails with *NetworkError or *APIError.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for outgoing requests. An empty token
// means the request is sent anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is a resty-backed gateway to the backend JSON API.
type Client struct {
	httpClient *resty.Client
	tokens     TokenSource
	timeout    time.Duration
	now        func() time.Time
	baseURL    atomic.Value // string
}

// NewClient builds a gateway rooted at baseURL (including the /api prefix).
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	c := &Client{
		httpClient: restyClient,
		tokens:     tokens,
		timeout:    timeout,
		now:        time.Now,
	}
	c.SetBaseURL(baseURL)
	restyClient.OnBeforeRequest(c.authorize)

	return c
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	base, _ := c.baseURL.Load().(string)
	return base
}

// SetBaseURL points subsequent requests at another backend root.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL.Store(strings.TrimSuffix(baseURL, "/"))
}

// HTTPClient exposes the underlying transport client, e.g. for interception in tests.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient.GetClient()
}

// envelope is the backend's success wrapper: {"data": ...}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Do issues a request and decodes the "data" member of the response into out.
// out may be nil when the caller does not need the payload.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.BaseURL()+path)
	if err != nil {
		return newNetworkError(method, path, err, c.timeout)
	}

	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return newAPIError(code, resp.Body())
	}

	if out == nil {
		return nil
	}

	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}

	return nil
}

// authorize attaches the bearer token. Token lookup failures degrade to an
// anonymous request and the backend decides.
func (c *Client) authorize(_ *resty.Client, req *resty.Request) error {
	if c.tokens == nil {
		return nil
	}

	token, err := c.tokens.Token(req.Context())
	if err != nil || token == "" {
		return nil
	}

	req.SetAuthToken(token)
	return nil
}
