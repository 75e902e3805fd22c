package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cujulink/internal/domain/types"
)

// ErrUnexpectedStatus is returned for responses the runner cannot interpret.
var ErrUnexpectedStatus = errors.New("unexpected status")

// errNoLink marks a find_link answer of 404 no_link.
var errNoLink = errors.New("no link")

// Client talks to the engine's HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Challenge fetches a random start/end pair.
func (c *Client) Challenge(ctx context.Context) (types.Challenge, error) {
	var out types.Challenge
	err := c.do(ctx, http.MethodGet, "/chain", nil, &out)
	return out, err
}

// FindLink asks for the shortest chain between two players.
func (c *Client) FindLink(ctx context.Context, start, end string) ([]types.LinkDetail, error) {
	q := url.Values{}
	q.Set("start_player", start)
	q.Set("end_player", end)
	var out []types.LinkDetail
	err := c.do(ctx, http.MethodGet, "/find_link?"+q.Encode(), nil, &out)
	return out, err
}

// ValidateChain submits a chain for checking.
func (c *Client) ValidateChain(ctx context.Context, req types.ValidateChainRequest) (types.ValidationResult, error) {
	var out types.ValidationResult
	err := c.do(ctx, http.MethodPost, "/validate_chain", req, &out)
	return out, err
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", "loadtest-"+uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if resp.StatusCode == http.StatusNotFound && eb.Code == "no_link" {
			return errNoLink
		}
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, eb.Message)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
