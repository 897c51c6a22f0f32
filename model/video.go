package model

type VideoStatus string

const (
	StatusPending    VideoStatus = "pending"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// Working reports whether the backend is still busy with the video.
func (s VideoStatus) Working() bool {
	return s == StatusPending || s == StatusProcessing
}

type VideoSource string

const (
	SourceLink   VideoSource = "youtube"
	SourceUpload VideoSource = "upload"
)

type Video struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	SourceType   VideoSource `json:"source_type"`
	SourceURL    string      `json:"source_url,omitempty"`
	FilePath     string      `json:"file_path,omitempty"`
	Duration     int         `json:"duration,omitempty"` // seconds
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
	Status       VideoStatus `json:"status"`
	Progress     int         `json:"progress,omitempty"`
	Transcript   string      `json:"transcript,omitempty"`
	IsLiked      bool        `json:"is_liked,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    string      `json:"created_at,omitempty"`
}

// StatusUpdate is what a status poll returns. Progress is only meaningful
// while the video is still working.
type StatusUpdate struct {
	ID       string      `json:"id"`
	Status   VideoStatus `json:"status"`
	Progress int         `json:"progress,omitempty"`
	Message  string      `json:"message,omitempty"`
}

// ClampProgress keeps a progress value within 0-100.
func ClampProgress(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
