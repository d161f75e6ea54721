package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	listPageSize   = 500
	requestTimeout = 10 * time.Second
	retryBase      = 250 * time.Millisecond
	retryAttempts  = 3
)

// ErrNotAuthenticated is returned by mutating calls made without a valid token.
var ErrNotAuthenticated = errors.New("remote: not authenticated")

// ErrMissingID is returned when a mutation requires a record id and got none.
var ErrMissingID = errors.New("remote: record id required")

// Client talks to the remote record store over its REST and realtime APIs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *AuthStore
	logger     *slog.Logger
	rt         *realtimeConn
}

// NewClient creates a client for the record store at baseURL. The token may
// be empty; unauthenticated clients can be used once a token is set.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		auth:       NewAuthStore(token),
		logger:     logger,
	}
	c.rt = newRealtimeConn(c)
	return c
}

// Auth returns the client's auth store.
func (c *Client) Auth() *AuthStore {
	return c.auth
}

// Collection returns a handle for the named remote collection.
func (c *Client) Collection(name string) *Collection {
	return &Collection{client: c, name: name}
}

// ListRecords fetches the full record list of a collection. It exists so
// consumers can depend on a one-method interface instead of the whole client.
func (c *Client) ListRecords(ctx context.Context, collection, sort string) ([]Record, error) {
	return c.Collection(collection).GetFullList(ctx, sort)
}

// SubscribeCollection opens a push subscription covering every record in a
// collection. See Collection.Subscribe.
func (c *Client) SubscribeCollection(collection string, cb func(Event)) (func(), error) {
	return c.Collection(collection).Subscribe("*", cb)
}

// Collection is a handle to one remote collection.
type Collection struct {
	client *Client
	name   string
}

type listPage struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
	TotalItems int      `json:"totalItems"`
	Items      []Record `json:"items"`
}

// GetFullList fetches every record in the collection, following pagination,
// ordered by the given sort expression (e.g. "-updated"). Transient
// transport and 5xx failures are retried with exponential backoff.
func (col *Collection) GetFullList(ctx context.Context, sort string) ([]Record, error) {
	var all []Record
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("perPage", fmt.Sprint(listPageSize))
		if sort != "" {
			q.Set("sort", sort)
		}

		var pg listPage
		err := retry.Do(ctx, retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase)), func(ctx context.Context) error {
			err := col.client.do(ctx, http.MethodGet, col.recordsPath()+"?"+q.Encode(), nil, &pg)
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", col.name, page, err)
		}

		all = append(all, pg.Items...)
		if pg.TotalPages == 0 || page >= pg.TotalPages || len(pg.Items) == 0 {
			return all, nil
		}
	}
}

// Create inserts a new record with the given fields.
func (col *Collection) Create(ctx context.Context, fields map[string]any) (Record, error) {
	var rec Record
	if !col.client.auth.IsValid() {
		return rec, ErrNotAuthenticated
	}
	if err := col.client.do(ctx, http.MethodPost, col.recordsPath(), fields, &rec); err != nil {
		return rec, fmt.Errorf("create %s record: %w", col.name, err)
	}
	return rec, nil
}

// Update patches the record with the given id.
func (col *Collection) Update(ctx context.Context, id string, fields map[string]any) (Record, error) {
	var rec Record
	if !col.client.auth.IsValid() {
		return rec, ErrNotAuthenticated
	}
	if id == "" {
		return rec, ErrMissingID
	}
	if err := col.client.do(ctx, http.MethodPatch, col.recordsPath()+"/"+url.PathEscape(id), fields, &rec); err != nil {
		return rec, fmt.Errorf("update %s record %s: %w", col.name, id, err)
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (col *Collection) Delete(ctx context.Context, id string) error {
	if !col.client.auth.IsValid() {
		return ErrNotAuthenticated
	}
	if id == "" {
		return ErrMissingID
	}
	if err := col.client.do(ctx, http.MethodDelete, col.recordsPath()+"/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s record %s: %w", col.name, id, err)
	}
	return nil
}

func (col *Collection) recordsPath() string {
	return "/api/collections/" + url.PathEscape(col.name) + "/records"
}

// statusError marks non-2xx responses so retry logic can inspect the code.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	// Transport-level failures (connection refused, timeouts) are retryable.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.auth.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
