// Package fetchhttp implements the schedule.Fetcher interface against the
// scheduling REST API.
package fetchhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookwell/scheduler/internal/schedule"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type windowPayload struct {
	ID    string    `json:"id,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (c *Client) FetchProviderSchedule(ctx context.Context) ([]schedule.RemoteWindow, error) {
	return c.list(ctx, "/schedule")
}

func (c *Client) FetchAppointments(ctx context.Context) ([]schedule.RemoteWindow, error) {
	return c.list(ctx, "/appointments")
}

func (c *Client) CreateProviderWindow(ctx context.Context, w schedule.TimeWindow) error {
	return c.create(ctx, "/schedule", w)
}

func (c *Client) CreateAppointment(ctx context.Context, w schedule.TimeWindow) error {
	return c.create(ctx, "/appointments", w)
}

func (c *Client) DeleteProviderWindow(ctx context.Context, id string) error {
	return c.delete(ctx, "/schedule/"+id)
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.delete(ctx, "/appointments/"+id)
}

func (c *Client) list(ctx context.Context, path string) ([]schedule.RemoteWindow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(path, resp)
	}

	var payload []windowPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	out := make([]schedule.RemoteWindow, 0, len(payload))
	for _, p := range payload {
		out = append(out, schedule.RemoteWindow{ID: p.ID, Start: p.Start, End: p.End})
	}
	return out, nil
}

func (c *Client) create(ctx context.Context, path string, w schedule.TimeWindow) error {
	body, err := json.Marshal(windowPayload{Start: w.Start, End: w.End})
	if err != nil {
		return fmt.Errorf("encode window: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return c.apiError(path, resp)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError(path, resp)
	}
	return nil
}

func (c *Client) apiError(path string, resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Error != "" {
		c.logger.Debug("api error response",
			zap.String("path", path),
			zap.String("code", payload.Error),
			zap.String("status", resp.Status),
		)
		return fmt.Errorf("%s: %s (%s)", path, payload.Error, resp.Status)
	}
	return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
}
