package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/web"
)

// clientTimeout bounds each call to a running server.
const clientTimeout = 10 * time.Second

// Client talks to a running resumo server over its HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the server at addr, which may be a bare
// host:port.
func NewClient(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: clientTimeout},
	}
}

// CacheStats fetches the cache statistics.
func (c *Client) CacheStats(ctx context.Context) (cache.Stats, error) {
	var stats cache.Stats
	err := c.do(ctx, http.MethodGet, "/api/v1/cache/stats", &stats)

	return stats, err
}

// ClearCache clears the cache, or only entries matching pattern.
func (c *Client) ClearCache(ctx context.Context,
	pattern string) (web.ClearCacheResponse, error) {

	path := "/api/v1/cache"
	if pattern != "" {
		path += "?pattern=" + url.QueryEscape(pattern)
	}

	var resp web.ClearCacheResponse
	err := c.do(ctx, http.MethodDelete, path, &resp)

	return resp, err
}

// do performs one request and decodes the data envelope into out.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr web.APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("server returned %s", resp.Status)
		}

		return fmt.Errorf("server returned %s: %s", apiErr.Error.Code,
			apiErr.Error.Message)
	}

	envelope := web.APIResponse{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	return nil
}
