package model

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Quiz never carries correct answers. Grading happens on the backend.
type Quiz struct {
	ID            string     `json:"id"`
	VideoID       string     `json:"video_id"`
	Questions     []Question `json:"questions"`
	QuestionCount int        `json:"question_count"`
	CreatedAt     string     `json:"created_at,omitempty"`
}

type Result struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quiz_id"`
	Score         int      `json:"score"`
	Total         int      `json:"total"`
	Percentage    float64  `json:"percentage"`
	Analysis      string   `json:"analysis,omitempty"`
	KnowledgeGaps []string `json:"knowledge_gaps,omitempty"`
}
