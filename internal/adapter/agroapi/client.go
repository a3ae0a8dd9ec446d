// Package agroapi is the HTTP client for the production statistics backend.
package agroapi

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

// Endpoint labels used in metrics.
const (
	endpointData     = "data"
	endpointHealth   = "health"
	endpointCultures = "cultures"
)

// Client talks to the backend API rooted at baseURL (e.g. http://host:8000/api).
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a backend client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// HealthCheck returns nil when the backend answers /health_check with a 2xx status.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.get(ctx, endpointHealth, c.baseURL+"/health_check")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	c.metrics.APIRequests.WithLabelValues(endpointHealth, "success").Inc()
	return nil
}

// FetchProduction returns the records for filter. Zero filter fields are
// left out of the query string.
func (c *Client) FetchProduction(ctx context.Context, filter domain.Filter) ([]domain.ProductionRecord, error) {
	u := c.baseURL + "/data/"
	params := url.Values{}
	if filter.Year > 0 {
		params.Set("ano", strconv.Itoa(filter.Year))
	}
	if filter.Culture != "" {
		params.Set("cultura", filter.Culture)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body productionResponse
	if err := c.getJSON(ctx, endpointData, u, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return []domain.ProductionRecord{}, nil
	}
	return body.Data, nil
}

// FetchCultures returns the culture options ordered by numeric id, the
// order in which a browser enumerates integer object keys.
func (c *Client) FetchCultures(ctx context.Context) ([]domain.CultureOption, error) {
	var body culturesResponse
	if err := c.getJSON(ctx, endpointCultures, c.baseURL+"/opcoes/cultures/", &body); err != nil {
		return nil, err
	}

	options := make([]domain.CultureOption, 0, len(body.Cultures))
	for id, label := range body.Cultures {
		options = append(options, domain.CultureOption{ID: id, Label: label})
	}
	slices.SortFunc(options, compareCultureIDs)
	return options, nil
}

func compareCultureIDs(a, b domain.CultureOption) int {
	ai, aErr := strconv.Atoi(a.ID)
	bi, bErr := strconv.Atoi(b.ID)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint, fullURL string, v any) error {
	resp, err := c.get(ctx, endpoint, fullURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

// get issues the request and returns the response only for 2xx statuses.
// Failures are counted here; the caller counts success once the body has
// been consumed, and closes it.
func (c *Client) get(ctx context.Context, endpoint, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("backend API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	c.logger.Debug("backend request", "endpoint", endpoint, "status", resp.StatusCode)
	return resp, nil
}

// Backend response types.

type productionResponse struct {
	Data []domain.ProductionRecord `json:"dados"`
}

type culturesResponse struct {
	Cultures map[string]string `json:"culturas"`
}
