package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ewintr.nl/vidqa/model"
)

type SearchRequest struct {
	Query   string `json:"query"`
	VideoID string `json:"video_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type SearchResponse struct {
	Query   string               `json:"query"`
	Results []model.SearchResult `json:"results"`
	Total   int                  `json:"total"`
}

// Search runs a semantic search. Calls share the "search" key, so typing
// ahead supersedes the previous in-flight query.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.CallKeyed(ctx, "search", http.MethodPost, "/search", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) SearchSuggestions(ctx context.Context, query string) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	path := fmt.Sprintf("/search/suggestions?q=%s", url.QueryEscape(query))
	if err := c.CallKeyed(ctx, "suggestions", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Suggestions, nil
}
