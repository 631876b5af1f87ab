package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"librarian/internal/book"
)

const booksPath = "/api/books"

var (
	// ErrNotFound matches an *APIError carrying a 404.
	ErrNotFound = errors.New("book not found")
	// ErrMalformedResponse wraps a 2xx reply whose body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx reply from the catalog API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api: status %d", e.Status)
	}
	return fmt.Sprintf("catalog api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// NewBook is the body of a create request.
type NewBook struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// Patch is the body of an update request. Nil fields are left untouched by
// the server.
type Patch struct {
	ID        int     `json:"id"`
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit caps outgoing requests at rps. Zero or less disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how often a GET is retried and the first backoff delay,
// which doubles on every attempt.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "librarian-cli",
		limiter:    rate.NewLimiter(rate.Inf, 1),
		maxRetries: 3,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the whole catalog.
func (c *Client) List(ctx context.Context) ([]book.Book, error) {
	var books []book.Book
	if err := c.get(ctx, c.baseURL+booksPath, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) Create(ctx context.Context, in NewBook) (book.Book, error) {
	var created book.Book
	err := c.send(ctx, http.MethodPost, in, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, p Patch) (book.Book, error) {
	var updated book.Book
	err := c.send(ctx, http.MethodPut, p, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, map[string]int{"id": id}, nil)
}

// Filter keeps the books whose title or author contains query, ignoring
// case. An empty query keeps everything.
func Filter(books []book.Book, query string) []book.Book {
	query = strings.TrimSpace(query)
	out := make([]book.Book, 0, len(books))
	for _, b := range books {
		if b.Matches(query) {
			out = append(out, b)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := c.backoff << uint(i-1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.do(ctx, http.MethodGet, url, nil, target)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// send issues a single mutation. Mutations are never retried since a
// create that reached the server would be applied twice.
func (c *Client) send(ctx context.Context, method string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", method, err)
	}
	return c.do(ctx, method, c.baseURL+booksPath, body, target)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", method, ErrMalformedResponse, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg); err == nil {
		apiErr.Message = msg.Message
	}
	return apiErr
}

// retryable reports whether a GET failure is worth another attempt: transport
// errors, 429 and 5xx.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	return true
}
