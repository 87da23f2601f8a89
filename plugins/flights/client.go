package flights

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

	logcontext "github.com/va6996/flightsearch/context"
	"github.com/va6996/flightsearch/log"
)

const (
	DefaultBaseURL = "http://localhost:5200"

	serverInfoPath   = "/"
	flightSearchPath = "/api/flights/search"
	mcpSearchPath    = "/api/mcp/search"
	healthPath       = "/api/health"

	// maxErrorBody bounds how much of a non-JSON error body ends up in messages
	maxErrorBody = 256
)

// Client talks to the flight-search server. Each call is a single
// synchronous round trip; nothing is retried or cached.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// GetServerInfo fetches the server's name, version and description
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	const op = "GetServerInfo"

	data, err := c.doRequest(ctx, op, http.MethodGet, serverInfoPath, nil, nil)
	if err != nil {
		return nil, err
	}

	info, err := DecodeServerInfo(data)
	if err != nil {
		return nil, c.malformed(ctx, op, err)
	}
	return info, nil
}

// Health asks the server whether it is up. A reply with any status other
// than "healthy" is returned as-is; callers decide what that means.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	const op = "Health"

	data, err := c.doRequest(ctx, op, http.MethodGet, healthPath, nil, nil)
	if err != nil {
		return nil, err
	}

	health, err := DecodeHealthStatus(data)
	if err != nil {
		return nil, c.malformed(ctx, op, err)
	}
	log.Debugf(ctx, "Health: %s reports %q (version %s)", health.Service, health.Status, health.Version)
	return health, nil
}

// SearchFlights runs a one-way or round-trip search on the REST endpoint
func (c *Client) SearchFlights(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	const op = "SearchFlights"

	log.Infof(ctx, "SearchFlights: %s %s -> %s on %s", req.TripType(), req.Origin, req.Destination, req.departure())
	warnUnknownCabin(ctx, op, req)
	data, err := c.doRequest(ctx, op, http.MethodGet, flightSearchPath, req.Query(), nil)
	if err != nil {
		return nil, err
	}

	result, err := DecodeSearchResult(data)
	if err != nil {
		return nil, c.malformed(ctx, op, err)
	}
	log.Debugf(ctx, "SearchFlights: received %d flights", len(result.Flights))
	return result, nil
}

// SearchMCP runs a search through the unified tool-invocation endpoint
func (c *Client) SearchMCP(ctx context.Context, req SearchRequest) (*MCPEnvelope, error) {
	const op = "SearchMCP"

	log.Infof(ctx, "SearchMCP: %s %s -> %s on %s", req.TripType(), req.Origin, req.Destination, req.departure())
	warnUnknownCabin(ctx, op, req)
	data, err := c.doRequest(ctx, op, http.MethodPost, mcpSearchPath, nil, req.MCPBody())
	if err != nil {
		return nil, err
	}

	envelope, err := DecodeMCPEnvelope(data)
	if err != nil {
		return nil, c.malformed(ctx, op, err)
	}
	log.Debugf(ctx, "SearchMCP: tool %q returned %d flights", envelope.Tool, len(envelope.Content.Flights))
	return envelope, nil
}

// warnUnknownCabin flags values the server is expected to reject. They are
// still sent.
func warnUnknownCabin(ctx context.Context, op string, req SearchRequest) {
	if cabin := CabinClass(req.cabin()); !cabin.Valid() {
		log.Warnf(ctx, "%s: forwarding unknown cabin class %q", op, cabin)
	}
	if req.Passengers <= 0 {
		log.Warnf(ctx, "%s: forwarding non-positive passenger count %d", op, req.Passengers)
	}
}

func (c *Client) malformed(ctx context.Context, op string, err error) error {
	log.Errorf(ctx, "%s: malformed response: %v", op, err)
	return &Error{Kind: ErrMalformedResponse, Op: op, URL: c.BaseURL, Err: err}
}

// doRequest performs one HTTP request and returns the raw response body of a
// 2xx reply
func (c *Client) doRequest(ctx context.Context, op, method, endpoint string, query url.Values, body interface{}) ([]byte, error) {
	target := c.BaseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: ErrRequestFailed, Op: op, URL: c.BaseURL, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &Error{Kind: ErrRequestFailed, Op: op, URL: c.BaseURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logcontext.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(logcontext.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		log.Errorf(ctx, "%s: %s %s failed (%v): %v", op, method, target, kind, err)
		return nil, &Error{Kind: kind, Op: op, URL: c.BaseURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrRequestFailed, Op: op, URL: c.BaseURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.WithField("status", resp.StatusCode).
		WithField("elapsed", time.Since(start).Round(time.Millisecond)).
		WithField("request_id", logcontext.RequestIDFromContext(ctx)).
		Debugf("%s: %s %s", op, method, target)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp, data)
		log.Errorf(ctx, "%s: %v", op, apiErr)
		return nil, &Error{Kind: ErrRequestFailed, Op: op, URL: c.BaseURL, Err: apiErr}
	}

	return data, nil
}

// parseAPIError reads the server's {"error": "..."} body, falling back to the
// raw text when the body is something else
func parseAPIError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	if err := json.Unmarshal(data, apiErr); err == nil && apiErr.Message != "" {
		return apiErr
	}

	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	apiErr.Message = text
	return apiErr
}
