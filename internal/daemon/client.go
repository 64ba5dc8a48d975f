package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/model"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 3 * time.Second

// ErrNotRunning indicates nothing answered at the daemon address.
var ErrNotRunning = errors.New("daemon: not running")

// Client talks to a running daemon's HTTP API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the daemon listening on addr
// ("host:port" or a full URL).
func NewClient(addr string) *Client {
	base := strings.TrimSuffix(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	rc := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "waniala/1.0").
		SetTimeout(requestTimeout)

	return &Client{http: rc}
}

// apiErrorBody mirrors the daemon's error payload.
type apiErrorBody struct {
	Error string `json:"error"`
}

// Health reports whether the daemon answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode())
	}
	return nil
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	st := new(Status)
	if err := c.do(ctx, http.MethodGet, "/v1/status", nil, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Events fetches the recent event buffer.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/v1/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SaveSummary asks the daemon to snapshot month/year.
func (c *Client) SaveSummary(ctx context.Context, month time.Month, year int) (*model.MonthlySummary, error) {
	sum := new(model.MonthlySummary)
	path := fmt.Sprintf("/v1/summaries?month=%d&year=%d", int(month), year)
	if err := c.do(ctx, http.MethodPut, path, nil, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := new(apiErrorBody)
	req := c.http.R().SetContext(ctx).SetError(apiErr)
	if result != nil {
		req.SetResult(result)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("daemon: %s %s: %d %s", method, path, resp.StatusCode(), msg)
	}
	return nil
}
