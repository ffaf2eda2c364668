// Package yelp searches businesses through the Yelp Fusion API.
package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jeanzhou31/slackattack/core/logger"
	"github.com/jeanzhou31/slackattack/core/lookup"
	"github.com/jeanzhou31/slackattack/core/netutil"
)

const (
	service        = "yelp"
	DefaultBaseURL = "https://api.yelp.com/v3"
	defaultLimit   = 3
	defaultTimeout = 10 * time.Second
)

// Config holds the Fusion credentials.
type Config struct {
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Limit   int           `yaml:"limit" envconfig:"LIMIT"`
}

// HTTPStatusError captures a non-2xx answer.
type HTTPStatusError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("unexpected status %d (%s)", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type searchResponse struct {
	Total      int `json:"total"`
	Businesses []struct {
		Name       string  `json:"name"`
		URL        string  `json:"url"`
		Rating     float64 `json:"rating"`
		ImageURL   string  `json:"image_url"`
		Categories []category `json:"categories"`
		Location struct {
			DisplayAddress []string `json:"display_address"`
		} `json:"location"`
	} `json:"businesses"`
}

type category struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client implements lookup.FoodSearcher.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
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
		return nil, errors.New("yelp: api key must not be empty")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	c := &Client{
		baseURL:    base,
		apiKey:     key,
		limit:      cfg.Limit,
		httpClient: netutil.NewClient(netutil.ClientOptions{Name: service, Timeout: cfg.Timeout}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) searchURL(term, location string) string {
	q := url.Values{}
	q.Set("term", term)
	q.Set("location", location)
	q.Set("limit", strconv.Itoa(c.limit))
	return c.baseURL + "/businesses/search?" + q.Encode()
}

// Search returns businesses ordered by relevance. An unknown location is
// reported as lookup.ErrNotFound.
func (c *Client) Search(ctx context.Context, term, location string) (lookup.FoodResults, error) {
	start := time.Now()
	res, code, err := c.search(ctx, term, location)
	attrs := []slog.Attr{
		slog.String("service", service),
		slog.String("op", "search"),
		slog.Int("http_code", code),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Warn(ctx, "lookup", "collaborator.call", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)...)
		return lookup.FoodResults{}, &lookup.CollaboratorError{Service: service, Op: "search", Err: err}
	}
	logger.Info(ctx, "lookup", "collaborator.call", append(attrs,
		slog.String("status", "ok"),
		slog.Int("results", len(res.Businesses)),
	)...)
	return res, nil
}

func (c *Client) search(ctx context.Context, term, location string) (lookup.FoodResults, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(term, location), nil)
	if err != nil {
		return lookup.FoodResults{}, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookup.FoodResults{}, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr errorResponse
		_ = json.Unmarshal(buf, &apiErr)
		if apiErr.Error.Code == "LOCATION_NOT_FOUND" {
			return lookup.FoodResults{}, resp.StatusCode, lookup.ErrNotFound
		}
		return lookup.FoodResults{}, resp.StatusCode, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Error.Code,
			Body:       string(buf),
		}
	}

	var payload searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return lookup.FoodResults{}, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	out := lookup.FoodResults{Businesses: make([]lookup.Business, 0, len(payload.Businesses))}
	for _, b := range payload.Businesses {
		out.Businesses = append(out.Businesses, lookup.Business{
			Name:     b.Name,
			URL:      b.URL,
			Rating:   b.Rating,
			ImageURL: b.ImageURL,
			Snippet:  snippet(b.Categories, b.Location.DisplayAddress),
		})
	}
	return out, resp.StatusCode, nil
}

// snippet summarises a business as "Pizza, Italian · 1 Main St, Hanover".
func snippet(categories []category, address []string) string {
	titles := make([]string, 0, len(categories))
	for _, c := range categories {
		if t := strings.TrimSpace(c.Title); t != "" {
			titles = append(titles, t)
		}
	}
	parts := make([]string, 0, 2)
	if len(titles) > 0 {
		parts = append(parts, strings.Join(titles, ", "))
	}
	if len(address) > 0 {
		parts = append(parts, strings.Join(address, ", "))
	}
	return strings.Join(parts, " · ")
}
