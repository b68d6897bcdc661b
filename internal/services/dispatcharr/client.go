// Package dispatcharr implements the HTTP client for a Dispatcharr instance:
// channel lineup, EPG candidate listing, program probes, and assignment
// writes. Authentication is a static bearer token; session handling and
// retries stay with the caller.
package dispatcharr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services"
)

// HTTPDoer describes the HTTP client used by the Dispatcharr service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Channel is one lineup entry as returned by the channels endpoint.
type Channel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Group     string `json:"channel_group"`
	EPGDataID int64  `json:"epg_data_id"`
}

// EPGData is one guide identity offered by an EPG source.
type EPGData struct {
	ID         int64  `json:"id"`
	TVGID      string `json:"tvg_id"`
	Name       string `json:"name"`
	SourceName string `json:"epg_source"`
}

// Program mirrors the program rows returned by the programs endpoint.
type Program struct {
	Title string    `json:"title"`
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Client talks to a single Dispatcharr instance.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
}

var (
	_ schedule.Validator = (*Client)(nil)
	_ schedule.Fetcher   = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, primarily for tests.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewClient builds a client for the given base URL and token. The URL must be
// set; remote commands refuse to construct a client that cannot reach
// anything.
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "dispatcharr", "new_client", "base URL is required", nil)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListChannels returns the channel lineup. When groups is non-empty only
// channels in those groups are returned; matching is case-insensitive.
func (c *Client) ListChannels(ctx context.Context, groups []string) ([]Channel, error) {
	var channels []Channel
	if err := c.getJSON(ctx, "/api/channels/channels/", nil, &channels); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return channels, nil
	}
	wanted := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		wanted[strings.ToLower(strings.TrimSpace(group))] = struct{}{}
	}
	filtered := channels[:0]
	for _, channel := range channels {
		if _, ok := wanted[strings.ToLower(channel.Group)]; ok {
			filtered = append(filtered, channel)
		}
	}
	return filtered, nil
}

// ListEPGData returns every guide identity known to the instance. These form
// the candidate pool for matching.
func (c *Client) ListEPGData(ctx context.Context) ([]EPGData, error) {
	var records []EPGData
	if err := c.getJSON(ctx, "/api/epg/data/", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Programs returns the program rows for one EPG identity inside the window.
func (c *Client) Programs(ctx context.Context, epgID int64, window schedule.Window) ([]Program, error) {
	query := url.Values{}
	query.Set("epg_data", strconv.FormatInt(epgID, 10))
	query.Set("start_time__lt", window.End.UTC().Format(time.RFC3339))
	query.Set("end_time__gte", window.Start.UTC().Format(time.RFC3339))

	var programs []Program
	if err := c.getJSON(ctx, "/api/epg/programs/", query, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// HasPrograms implements schedule.Validator against the live instance.
func (c *Client) HasPrograms(ctx context.Context, epgID int64, window schedule.Window) (bool, error) {
	programs, err := c.Programs(ctx, epgID, window)
	if err != nil {
		return false, err
	}
	return len(programs) > 0, nil
}

// FetchPrograms implements schedule.Fetcher so probe results can be kept in
// the local program cache.
func (c *Client) FetchPrograms(ctx context.Context, epgID int64, window schedule.Window) ([]schedule.Program, error) {
	programs, err := c.Programs(ctx, epgID, window)
	if err != nil {
		return nil, err
	}
	rows := make([]schedule.Program, 0, len(programs))
	for _, p := range programs {
		rows = append(rows, schedule.Program{EPGID: epgID, Title: p.Title, Start: p.Start, End: p.End})
	}
	return rows, nil
}

// AssignEPG points a channel at a new EPG identity.
func (c *Client) AssignEPG(ctx context.Context, channelID, epgID int64) error {
	payload, err := json.Marshal(map[string]int64{"epg_data_id": epgID})
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}
	path := fmt.Sprintf("/api/channels/channels/%d/", channelID)
	return c.send(ctx, http.MethodPatch, path, payload, nil)
}

// RefreshGuide asks the instance to re-import guide data so a fresh
// assignment picks up programs without waiting for the next scheduled run.
func (c *Client) RefreshGuide(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/api/epg/import/", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "dispatcharr", requestOp(req), path, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, req, path); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrUnavailable, "dispatcharr", requestOp(req),
			fmt.Sprintf("decode response from %s", path), err)
	}
	return nil
}

func classifyStatus(status int, req *http.Request, path string) error {
	switch {
	case status < http.StatusMultipleChoices:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "dispatcharr", requestOp(req),
			fmt.Sprintf("%s returned %d, check api_token", path, status), nil)
	case status == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "dispatcharr", requestOp(req),
			fmt.Sprintf("%s returned 404", path), nil)
	case status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrUnavailable, "dispatcharr", requestOp(req),
			fmt.Sprintf("%s returned %d", path, status), nil)
	default:
		return services.Wrap(services.ErrValidation, "dispatcharr", requestOp(req),
			fmt.Sprintf("%s returned %d", path, status), nil)
	}
}

func requestOp(req *http.Request) string {
	return strings.ToLower(req.Method)
}
