// Package gmaps plans routes through the Google Directions API.
package gmaps

import (
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

	"github.com/jeanzhou31/slackattack/core/logger"
	"github.com/jeanzhou31/slackattack/core/lookup"
	"github.com/jeanzhou31/slackattack/core/netutil"
)

const (
	service        = "gmaps"
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// StatusError is a directions answer whose status means the request itself
// was rejected, as opposed to a place that could not be routed.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "status " + e.Status
	}
	return fmt.Sprintf("status %s: %s", e.Status, e.Message)
}

type textValue struct {
	Text string `json:"text"`
}

type directionsPayload struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			StartAddress string    `json:"start_address"`
			EndAddress   string    `json:"end_address"`
			Distance     textValue `json:"distance"`
			Duration     textValue `json:"duration"`
			Steps        []struct {
				HTMLInstructions string `json:"html_instructions"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Client implements lookup.DirectionsFinder.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New builds a client. Requests are never retried.
func New(cfg Config, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gmaps: api key must not be empty")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    base,
		apiKey:     key,
		httpClient: netutil.NewClient(netutil.ClientOptions{Name: service, Timeout: cfg.Timeout}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) directionsURL(origin, destination string) string {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", c.apiKey)
	return c.baseURL + "/directions/json?" + q.Encode()
}

// Directions asks for a route. NOT_FOUND and ZERO_RESULTS come back as a
// response with that status; rejected requests and transport failures are
// errors.
func (c *Client) Directions(ctx context.Context, origin, destination string) (lookup.DirectionsResponse, error) {
	start := time.Now()
	res, code, err := c.directions(ctx, origin, destination)
	attrs := []slog.Attr{
		slog.String("service", service),
		slog.String("op", "directions"),
		slog.Int("http_code", code),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Warn(ctx, "lookup", "collaborator.call", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)...)
		return lookup.DirectionsResponse{}, &lookup.CollaboratorError{Service: service, Op: "directions", Err: err}
	}
	logger.Info(ctx, "lookup", "collaborator.call", append(attrs,
		slog.String("status", "ok"),
		slog.String("result", res.Status),
		slog.Int("results", len(res.Routes)),
	)...)
	return res, nil
}

func (c *Client) directions(ctx context.Context, origin, destination string) (lookup.DirectionsResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directionsURL(origin, destination), nil)
	if err != nil {
		return lookup.DirectionsResponse{}, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookup.DirectionsResponse{}, 0, redact(err, c.apiKey)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return lookup.DirectionsResponse{}, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(buf)))
	}

	var payload directionsPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return lookup.DirectionsResponse{}, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	switch payload.Status {
	case lookup.StatusOK, lookup.StatusNotFound, lookup.StatusZeroResults:
	default:
		return lookup.DirectionsResponse{}, resp.StatusCode, &StatusError{Status: payload.Status, Message: payload.ErrorMessage}
	}
	return convert(payload), resp.StatusCode, nil
}

func convert(p directionsPayload) lookup.DirectionsResponse {
	out := lookup.DirectionsResponse{Status: p.Status}
	for _, r := range p.Routes {
		route := lookup.Route{}
		for _, l := range r.Legs {
			leg := lookup.Leg{
				StartAddress: l.StartAddress,
				EndAddress:   l.EndAddress,
				DistanceText: l.Distance.Text,
				DurationText: l.Duration.Text,
			}
			for _, st := range l.Steps {
				leg.Steps = append(leg.Steps, lookup.RouteStep{HTMLInstructions: st.HTMLInstructions})
			}
			route.Legs = append(route.Legs, leg)
		}
		out.Routes = append(out.Routes, route)
	}
	return out
}

// redact keeps the api key out of *url.Error messages.
func redact(err error, key string) error {
	var urlErr *url.Error
	if key == "" || !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "<redacted>"),
		Err: urlErr.Err,
	}
}
