package client

import (
	"context"
	"fmt"
	"net/http"

	"ewintr.nl/vidqa/model"
)

func (c *Client) Notes(ctx context.Context, videoID string) ([]model.Note, error) {
	var notes []model.Note
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/videos/%s/notes", videoID), nil, &notes); err != nil {
		return nil, err
	}

	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, videoID, content string, timestamp int) (*model.Note, error) {
	body := struct {
		Content   string `json:"content"`
		Timestamp int    `json:"timestamp"`
	}{
		Content:   content,
		Timestamp: timestamp,
	}
	var note model.Note
	if err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/videos/%s/notes", videoID), body, &note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, videoID, noteID string) error {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/videos/%s/notes/%s", videoID, noteID), nil, nil)
}
