// Package graph implements the HTTP client for the external fact and
// knowledge-graph service (zep-style API).
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg *config.GraphConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) GetFacts(ctx context.Context, sessionID string) ([]core.Fact, error) {
	var result struct {
		Facts []core.Fact `json:"facts"`
	}
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/facts"
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("get facts: %w", err)
	}
	return result.Facts, nil
}

func (c *Client) IdentifyEntities(ctx context.Context, text string) ([]string, error) {
	var result struct {
		Entities []string `json:"entities"`
	}
	if err := c.post(ctx, "/api/v1/extract/entities", map[string]string{"text": text}, &result); err != nil {
		return nil, fmt.Errorf("identify entities: %w", err)
	}
	return result.Entities, nil
}

func (c *Client) GetEntityInfo(ctx context.Context, entity string) (string, error) {
	var result struct {
		Description string `json:"description"`
	}
	path := "/api/v1/graph/entities/" + url.PathEscape(entity)
	if err := c.get(ctx, path, &result); err != nil {
		return "", fmt.Errorf("get entity info: %w", err)
	}
	return result.Description, nil
}

func (c *Client) GetRelatedEntities(ctx context.Context, entity string, depth int) ([]string, error) {
	var result struct {
		Related []string `json:"related"`
	}
	path := "/api/v1/graph/entities/" + url.PathEscape(entity) + "/related?depth=" + strconv.Itoa(depth)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("get related entities: %w", err)
	}
	return result.Related, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
