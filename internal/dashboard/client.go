package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"marathon-admin/internal/live"
)

// Filters narrows the race list the way the list view's controls do.
type Filters struct {
	Status   string
	Category string
	Search   string
}

func (f Filters) query() string {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// RoutePoint is one waypoint of a planned course polyline.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client consumes the operator backend's REST API. Every JSON endpoint
// wraps its payload in a {success, data, error} envelope.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{baseURL: baseURL, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s: %s", path, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s payload: %w", path, err)
	}
	return nil
}

func (c *Client) ListRaces(ctx context.Context, f Filters) ([]live.RaceSnapshot, error) {
	var races []live.RaceSnapshot
	if err := c.getJSON(ctx, "/races"+f.query(), &races); err != nil {
		return nil, err
	}
	return races, nil
}

func (c *Client) GetRace(ctx context.Context, id string) (live.RaceSnapshot, error) {
	var race live.RaceSnapshot
	if err := c.getJSON(ctx, "/races/"+id, &race); err != nil {
		return live.RaceSnapshot{}, err
	}
	return race, nil
}

func (c *Client) RoutePath(ctx context.Context, routeID string) ([]RoutePoint, error) {
	var points []RoutePoint
	if err := c.getJSON(ctx, "/routes/"+routeID+"/gpx", &points); err != nil {
		return nil, err
	}
	return points, nil
}

// DownloadCertificate saves the finisher certificate PDF into dir and
// returns the written path. The filename follows the dashboard's
// download contract.
func (c *Client) DownloadCertificate(ctx context.Context, raceID, dir string) (string, error) {
	path := "/races/" + raceID + "/certificate"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", path, resp.Status)
	}

	target := filepath.Join(dir, fmt.Sprintf("race-certificate-%s.pdf", raceID))
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}
