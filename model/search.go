package model

type SearchResult struct {
	VideoID        string  `json:"video_id"`
	VideoTitle     string  `json:"video_title,omitempty"`
	Text           string  `json:"text"`
	TimestampStart int     `json:"timestamp_start,omitempty"`
	TimestampEnd   int     `json:"timestamp_end,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}
