package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ewintr.nl/vidqa/model"
)

func (c *Client) Videos(ctx context.Context) ([]model.Video, error) {
	var videos []model.Video
	if err := c.Call(ctx, http.MethodGet, "/videos", nil, &videos); err != nil {
		return nil, err
	}

	return videos, nil
}

func (c *Client) Video(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/videos/%s", id), nil, &video); err != nil {
		return nil, err
	}

	return &video, nil
}

// ProcessURL submits a video by link. The backend ingests it asynchronously,
// the returned video starts out pending.
func (c *Client) ProcessURL(ctx context.Context, url, title string) (*model.Video, error) {
	body := struct {
		URL   string `json:"url"`
		Title string `json:"title,omitempty"`
	}{
		URL:   url,
		Title: title,
	}
	var video model.Video
	if err := c.Call(ctx, http.MethodPost, "/videos/process-url", body, &video); err != nil {
		return nil, err
	}

	return &video, nil
}

// UploadVideo posts the file as multipart form data. Title defaults to the
// file name.
func (c *Client) UploadVideo(ctx context.Context, filename string, file io.Reader, title string) (*model.Video, error) {
	if title == "" {
		title = filename
	}
	var video model.Video
	if err := c.upload(ctx, "/videos/upload", "file", filename, file, map[string]string{"title": title}, &video); err != nil {
		return nil, err
	}

	return &video, nil
}

func (c *Client) VideoStatus(ctx context.Context, id string) (*model.StatusUpdate, error) {
	var status model.StatusUpdate
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/videos/%s/status", id), nil, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/videos/%s", id), nil, nil)
}

// ToggleLike flips the like flag and returns the new value.
func (c *Client) ToggleLike(ctx context.Context, id string) (bool, error) {
	var resp struct {
		IsLiked bool `json:"is_liked"`
	}
	if err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/videos/%s/like", id), nil, &resp); err != nil {
		return false, err
	}

	return resp.IsLiked, nil
}

// Transcript fetches the full transcript text. Only available once the video
// has completed processing.
func (c *Client) Transcript(ctx context.Context, id string) (string, error) {
	var resp struct {
		VideoID    string `json:"video_id"`
		Transcript string `json:"transcript"`
	}
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/videos/%s/transcript", id), nil, &resp); err != nil {
		return "", err
	}

	return resp.Transcript, nil
}
