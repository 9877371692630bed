// Package tools provides the builtin tool handlers the default agent ships
// with: date arithmetic with LLM-backed date normalization, Tavily web
// search, and Open-Meteo forecast/archive lookups. Handlers report failures
// as errors; the tool.Executor translates them into error observations, so
// nothing here can abort a run.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// restClient is a small JSON-over-HTTP helper shared by the builtin tools.
// Requests pass through a token-bucket limiter so bursts of tool calls stay
// polite toward the upstream APIs.
type restClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func newRESTClient(timeout time.Duration, perSecond float64, burst int) *restClient {
	return &restClient{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// getJSON performs a rate-limited GET and decodes the JSON response body
// into out. Non-2xx statuses are returned to the caller together with the
// raw body so tools can build their provider-specific error messages.
func (c *restClient) getJSON(ctx context.Context, rawURL string, params url.Values, out any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req, out)
}

// postJSON performs a rate-limited POST with a JSON body and decodes the
// JSON response into out.
func (c *restClient) postJSON(ctx context.Context, rawURL string, payload any, out any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *restClient) do(req *http.Request, out any) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, raw, nil
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, raw, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, raw, nil
}
