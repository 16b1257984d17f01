// Package client talks to a running fraud dashboard over its JSON API.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fraud-dashboard/internal/api"
	"fraud-dashboard/internal/features"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type Client struct {
	base string
	rest *resty.Client
}

// APIError is a non-2xx reply from the dashboard.
type APIError struct {
	Status int
	Kind   string
	Msg    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("dashboard: %d %s: %s", e.Status, e.Kind, e.Msg)
	}
	return fmt.Sprintf("dashboard: %d %s", e.Status, e.Msg)
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Evaluate scores one transaction. A nil threshold uses the bundle default.
func (c *Client) Evaluate(ctx context.Context, v features.Vector, threshold *float64) (*api.EvaluateResponse, error) {
	result := &api.EvaluateResponse{}
	apiErr := &api.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(api.EvaluateRequest{Features: v, Threshold: threshold}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/api/evaluate")
	if err != nil {
		return nil, fmt.Errorf("evaluate request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Kind: apiErr.Kind, Msg: errorMessage(apiErr, resp)}
	}
	return result, nil
}

func (c *Client) Model(ctx context.Context) (*api.ModelInfo, error) {
	result := &api.ModelInfo{}
	if err := c.get(ctx, "/api/model", result); err != nil {
		return nil, err
	}
	return result, nil
}

// Preset fetches the full feature vector of a named example transaction.
func (c *Client) Preset(ctx context.Context, name string) (features.Vector, error) {
	var result features.Vector
	if err := c.get(ctx, "/api/presets/"+name, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	apiErr := &api.ErrorResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(c.base + path)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Kind: apiErr.Kind, Msg: errorMessage(apiErr, resp)}
	}
	return nil
}

func errorMessage(apiErr *api.ErrorResponse, resp *resty.Response) string {
	if apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(resp.String())
}
