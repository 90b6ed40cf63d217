package client

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient makes REST calls to the campus events API. It is the only
// place requests are built and error text is decided.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// WithTimeout bounds each request. Zero leaves the transport default.
// The timeout is set on a copy, so a shared *http.Client is not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://localhost:3000/api").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

// BaseURL returns the API root every endpoint is relative to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Request sends one JSON request and returns the parsed response body.
// An empty or non-JSON body is returned as nil. Any transport failure or
// non-2xx status is returned as *APIError.
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, body any, token string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, &APIError{Message: GenericErrorMessage, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("request_id", reqID).Str("method", method).Str("path", endpoint).Msg("request failed")
		return nil, &APIError{Message: GenericErrorMessage, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: GenericErrorMessage, Err: fmt.Errorf("%w: reading body: %v", ErrTransport, err)}
	}
	data := parseBody(raw)

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    NormalizeError(data, GenericErrorMessage),
		}
	}
	return data, nil
}

// parseBody returns raw when it is valid JSON and nil otherwise.
func parseBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// call sends a request and decodes a non-null response into out.
func (c *HTTPClient) call(ctx context.Context, method, endpoint string, body any, token string, out any) error {
	data, err := c.Request(ctx, method, endpoint, body, token)
	if err != nil {
		return err
	}
	if out == nil || data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: http.StatusOK, Message: GenericErrorMessage, Err: fmt.Errorf("decoding %s %s: %w", method, endpoint, err)}
	}
	return nil
}

// Register sends POST /auth/register.
func (c *HTTPClient) Register(ctx context.Context, in RegisterRequest) error {
	return c.call(ctx, http.MethodPost, "/auth/register", in, "", nil)
}

// Login sends POST /auth/login.
func (c *HTTPClient) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", in, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStudents fetches GET /students.
func (c *HTTPClient) ListStudents(ctx context.Context, token string) ([]Student, error) {
	var out []Student
	if err := c.call(ctx, http.MethodGet, "/students", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEvents fetches GET /events.
func (c *HTTPClient) ListEvents(ctx context.Context, token string) ([]Event, error) {
	var out []Event
	if err := c.call(ctx, http.MethodGet, "/events", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStudent sends POST /students.
func (c *HTTPClient) CreateStudent(ctx context.Context, token string, in StudentInput) error {
	return c.call(ctx, http.MethodPost, "/students", in, token, nil)
}

// UpdateStudent sends PATCH /students/{id}.
func (c *HTTPClient) UpdateStudent(ctx context.Context, token string, id ID, in StudentInput) error {
	return c.call(ctx, http.MethodPatch, "/students/"+pathID(id), in, token, nil)
}

// DeleteStudent sends DELETE /students/{id}.
func (c *HTTPClient) DeleteStudent(ctx context.Context, token string, id ID) error {
	return c.call(ctx, http.MethodDelete, "/students/"+pathID(id), nil, token, nil)
}

// CreateEvent sends POST /events.
func (c *HTTPClient) CreateEvent(ctx context.Context, token string, in EventInput) error {
	return c.call(ctx, http.MethodPost, "/events", in, token, nil)
}

// UpdateEvent sends PATCH /events/{id}.
func (c *HTTPClient) UpdateEvent(ctx context.Context, token string, id ID, in EventInput) error {
	return c.call(ctx, http.MethodPatch, "/events/"+pathID(id), in, token, nil)
}

// CancelEvent sends PATCH /events/{id}/cancel.
func (c *HTTPClient) CancelEvent(ctx context.Context, token string, id ID) error {
	return c.call(ctx, http.MethodPatch, "/events/"+pathID(id)+"/cancel", nil, token, nil)
}

// Subscribe sends POST /events/{id}/subscribe/{studentId}.
func (c *HTTPClient) Subscribe(ctx context.Context, token string, eventID, studentID ID) error {
	return c.call(ctx, http.MethodPost, "/events/"+pathID(eventID)+"/subscribe/"+pathID(studentID), nil, token, nil)
}

// Unsubscribe sends DELETE /events/{id}/unsubscribe/{studentId}.
func (c *HTTPClient) Unsubscribe(ctx context.Context, token string, eventID, studentID ID) error {
	return c.call(ctx, http.MethodDelete, "/events/"+pathID(eventID)+"/unsubscribe/"+pathID(studentID), nil, token, nil)
}

func pathID(id ID) string {
	return url.PathEscape(id.String())
}
