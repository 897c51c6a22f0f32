package model

type Note struct {
	ID        string `json:"id"`
	VideoID   string `json:"video_id"`
	Content   string `json:"content"`
	Timestamp int    `json:"timestamp,omitempty"` // position in the video, seconds
	CreatedAt string `json:"created_at,omitempty"`
}
