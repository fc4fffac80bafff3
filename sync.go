package macrolog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// syncTimeout bounds every network call. On expiry the attempt is abandoned
// and reported as recoverable; the next mutation re-triggers eligibility.
const syncTimeout = 10 * time.Second

// PullResponse is the body of GET /nutrition.
type PullResponse struct {
	Success    bool      `json:"success"`
	HasUpdates bool      `json:"hasUpdates"`
	LastSync   time.Time `json:"lastSync"`
	Data       *Snapshot `json:"data"`
}

// PushRequest is the body of POST /nutrition: the full snapshot plus the
// client's update timestamp.
type PushRequest struct {
	*Snapshot
	UpdatedAt time.Time `json:"updatedAt"`
}

// PushResponse is the body returned by POST /nutrition.
type PushResponse struct {
	Success bool `json:"success"`
}

// ServerClient abstracts HTTP communication with the Larder sync service.
// Implementations must be safe for concurrent use.
type ServerClient interface {
	// Fetch retrieves the server's current snapshot and change flag.
	Fetch(ctx context.Context) (*PullResponse, error)

	// Push uploads the full local snapshot with its update timestamp.
	Push(ctx context.Context, snap *Snapshot, updatedAt time.Time) (*PushResponse, error)
}

// HTTPClient implements ServerClient using net/http.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	debug      *DebugLogger
}

// NewHTTPClient creates a new Larder HTTP client.
func NewHTTPClient(serverURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: syncTimeout,
		},
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *HTTPClient) WithHTTPClient(client *http.Client) *HTTPClient {
	c.httpClient = client
	return c
}

// WithDebugLogger attaches a debug logger for request/response tracing.
func (c *HTTPClient) WithDebugLogger(logger *DebugLogger) *HTTPClient {
	c.debug = logger
	return c
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "macrolog-client/1.0")
}

func (c *HTTPClient) Fetch(ctx context.Context) (*PullResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nutrition", nil)
	if err != nil {
		return nil, &SyncError{Operation: "fetch", Err: err}
	}
	c.setHeaders(req)
	c.debug.LogRequest(http.MethodGet, req.URL.String(), nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport("fetch", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.debug.LogResponse(resp.StatusCode, resp.Status, body)
		return nil, newSyncError("fetch", resp.StatusCode, body)
	}

	var pull PullResponse
	if err := json.NewDecoder(resp.Body).Decode(&pull); err != nil {
		return nil, &SyncError{Operation: "fetch", Err: err}
	}
	c.debug.LogSync("fetch", fmt.Sprintf("hasUpdates=%v lastSync=%s", pull.HasUpdates, pull.LastSync))

	return &pull, nil
}

func (c *HTTPClient) Push(ctx context.Context, snap *Snapshot, updatedAt time.Time) (*PushResponse, error) {
	body, err := json.Marshal(PushRequest{Snapshot: snap, UpdatedAt: updatedAt})
	if err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/nutrition", bytes.NewReader(body))
	if err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	c.debug.LogRequest(http.MethodPost, req.URL.String(), body)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport("push", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.debug.LogResponse(resp.StatusCode, resp.Status, respBody)
		return nil, newSyncError("push", resp.StatusCode, respBody)
	}

	var result PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}

	return &result, nil
}

// newSyncError builds a SyncError for a non-200 response. A 401 carries
// ErrUnauthorized so callers can short-circuit the sync cycle and surface a
// re-authentication signal instead of retrying.
func newSyncError(op string, statusCode int, body []byte) *SyncError {
	if statusCode == http.StatusUnauthorized {
		return &SyncError{Operation: op, StatusCode: statusCode, Err: ErrUnauthorized}
	}

	msg := ""
	if len(body) > 0 && statusCode >= 400 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}
	return &SyncError{
		Operation:  op,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, msg),
	}
}

// classifyTransport distinguishes timeouts (recoverable, reported as such)
// from connectivity failures (the client is offline; sync is deferred to the
// next eligible window).
func classifyTransport(op string, err error) error {
	var ne net.Error
	if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return &SyncError{Operation: op, Err: fmt.Errorf("timeout: %w", err)}
	}
	if errors.Is(err, context.Canceled) {
		return &SyncError{Operation: op, Err: err}
	}
	return &SyncError{Operation: op, Err: fmt.Errorf("%w: %v", ErrOffline, err)}
}
