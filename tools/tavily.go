package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sbrizzi/reagent/tool"
)

const defaultTavilyURL = "https://api.tavily.com/search"

var tavilySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query":       map[string]any{"type": "string"},
		"max_results": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
	},
	"required": []string{"query"},
}

// TavilyOptions configure the web search tool.
type TavilyOptions struct {
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
	// Timeout bounds each search request.
	Timeout time.Duration
	// RequestsPerSecond and Burst shape the client-side rate limit.
	RequestsPerSecond float64
	Burst             int
}

// NewTavilySearch builds the tavily_search tool. The API key is injected
// here, never read from the environment at call time; an empty key fails at
// first use so an agent without search still runs.
func NewTavilySearch(apiKey string, optFns ...func(o *TavilyOptions)) tool.Tool {
	opts := TavilyOptions{
		BaseURL:           defaultTavilyURL,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 1,
		Burst:             3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := newRESTClient(opts.Timeout, opts.RequestsPerSecond, opts.Burst)

	return tool.NewFunctionTool(
		"tavily_search",
		"Perform a web search using Tavily API.",
		tavilySchema,
		func(ctx context.Context, args map[string]any) (any, error) {
			return tavilySearch(ctx, client, opts.BaseURL, apiKey, args)
		},
	)
}

func tavilySearch(ctx context.Context, client *restClient, baseURL, apiKey string, args map[string]any) (any, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Tavily API key")
	}
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	maxResults := 5
	if n, ok := intArg(args, "max_results"); ok {
		maxResults = n
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 10 {
		maxResults = 10
	}

	payload := map[string]any{
		"api_key":             apiKey,
		"query":               query,
		"max_results":         maxResults,
		"search_depth":        "advanced",
		"include_answer":      false,
		"include_images":      false,
		"include_raw_content": false,
	}

	var decoded struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	status, body, err := client.postJSON(ctx, baseURL, payload, &decoded)
	if err != nil {
		return nil, fmt.Errorf("Tavily API error: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("Tavily API error: HTTP %d - %s", status, body)
	}

	results := make([]any, 0, len(decoded.Results))
	for _, item := range decoded.Results {
		results = append(results, map[string]any{
			"title":   item.Title,
			"url":     item.URL,
			"content": item.Content,
			"score":   item.Score,
		})
	}
	return map[string]any{"query": query, "results": results}, nil
}
