package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/kangoro5/leather-walk/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client is the low-level REST client every typed client shares.
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	timeout       time.Duration
	tokens        TokenSource
	onAuthFailure func(ctx context.Context)
	breaker       *circuitbreaker.Breaker[*http.Response]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call. Zero disables the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthFailureHook registers fn to run when an authenticated call is rejected with 401.
// A 403 is a PermissionError and leaves the session alone.
func WithAuthFailureHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

func WithBreaker(s circuitbreaker.Settings) Option {
	return func(c *Client) { c.breaker = circuitbreaker.New[*http.Response](s) }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host required", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuitbreaker.New[*http.Response](circuitbreaker.Settings{Name: "storefront-api"})
	}
	return c, nil
}

// errUpstream marks 5xx responses as breaker failures while still returning them.
var errUpstream = errors.New("upstream failure")

type request struct {
	op          string
	resource    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

// do sends req and returns the response for any status. The caller closes the body.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), req.body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	if idem := idempotencyKey(ctx); idem != "" {
		httpReq.Header.Set("Idempotency-Key", idem)
	}
	if req.auth {
		token := ""
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return nil, &domain.AuthenticationError{Message: "no session token"}
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstream
		}
		return resp, nil
	})
	if errors.Is(err, errUpstream) {
		return resp, nil
	}
	if err != nil {
		return nil, &domain.NetworkError{Op: req.op, Err: err}
	}
	return resp, nil
}

// call runs req, maps a non-2xx status to a domain error and decodes a 2xx body into out.
func (c *Client) call(ctx context.Context, req request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(req.resource, resp); err != nil {
		if req.auth && domain.IsAuthentication(err) && c.onAuthFailure != nil {
			c.onAuthFailure(ctx)
		}
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: req.op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &domain.UnexpectedResponseError{Op: req.op, Reason: "empty body"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.UnexpectedResponseError{Op: req.op, Reason: err.Error()}
	}
	return nil
}

func jsonRequest(op, resource, method, path string, in any, auth bool) (request, error) {
	req := request{op: op, resource: resource, method: method, path: path, auth: auth}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return request{}, fmt.Errorf("%s: marshal body: %w", op, err)
		}
		req.body = bytes.NewReader(b)
		req.contentType = "application/json"
	}
	return req, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func checkResponse(resource string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := ""
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &domain.AuthenticationError{Message: msg}
	case http.StatusForbidden:
		return &domain.PermissionError{Message: msg}
	case http.StatusNotFound:
		return &domain.NotFoundError{Resource: resource, Message: msg}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "request rejected by server"
		}
		return &domain.ValidationError{Message: msg}
	default:
		return &domain.ServerError{Status: resp.StatusCode, Message: msg}
	}
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches key to calls made with the returned context.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

func idempotencyKey(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKeyCtx{}).(string); ok {
		return key
	}
	return ""
}

func pathID(prefix, id string, rest ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
