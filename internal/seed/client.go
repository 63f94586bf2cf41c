package seed

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

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
	"github.com/MidhulKiruthik/Nova-sub000/internal/pipeline"
)

// Client talks to the Nova HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Import posts a batch to /partners/import.
func (c *Client) Import(ctx context.Context, batch []model.Partner) (pipeline.Report, error) {
	var rep pipeline.Report
	err := c.do(ctx, http.MethodPost, "/partners/import", batch, &rep)
	return rep, err
}

// Top fetches the n best ranked partners.
func (c *Client) Top(ctx context.Context, n int) ([]types.Entry, error) {
	var entries []types.Entry
	q := url.Values{"limit": {strconv.Itoa(n)}}
	err := c.do(ctx, http.MethodGet, "/partners/top?"+q.Encode(), nil, &entries)
	return entries, err
}

// Partners lists every stored partner.
func (c *Client) Partners(ctx context.Context) ([]model.Partner, error) {
	var out []model.Partner
	err := c.do(ctx, http.MethodGet, "/partners", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
