package client

import (
	"context"
	"fmt"
	"net/http"

	"ewintr.nl/vidqa/model"
)

// ChatAnswer is the assistant's reply, optionally grounded on video segments.
type ChatAnswer struct {
	Message    string            `json:"message"`
	References []model.Reference `json:"references,omitempty"`
}

func (c *Client) SendChat(ctx context.Context, videoID, message string) (*ChatAnswer, error) {
	body := struct {
		VideoID string `json:"videoId"`
		Message string `json:"message"`
	}{
		VideoID: videoID,
		Message: message,
	}
	var answer ChatAnswer
	if err := c.Call(ctx, http.MethodPost, "/chat", body, &answer); err != nil {
		return nil, err
	}

	return &answer, nil
}

func (c *Client) ChatHistory(ctx context.Context, videoID string) ([]model.ChatMessage, error) {
	var resp struct {
		VideoID  string              `json:"video_id"`
		Messages []model.ChatMessage `json:"messages"`
	}
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/chat/%s/history", videoID), nil, &resp); err != nil {
		return nil, err
	}

	return resp.Messages, nil
}

func (c *Client) ClearChatHistory(ctx context.Context, videoID string) error {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/chat/%s/history", videoID), nil, nil)
}
