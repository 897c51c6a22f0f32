package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Delivery tracks what happened to an optimistically appended message. A user
// message starts out pending and ends up delivered or failed; failed messages
// stay in the transcript so the failure is visible.
type Delivery string

const (
	DeliveryPending   Delivery = "pending"
	DeliveryDelivered Delivery = "delivered"
	DeliveryFailed    Delivery = "failed"
)

// Reference points at the video segment an assistant answer is grounded on.
type Reference struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text,omitempty"`
}

type ChatMessage struct {
	ID         string      `json:"id"`
	VideoID    string      `json:"video_id,omitempty"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	References []Reference `json:"references,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`

	Delivery Delivery `json:"-"`
}
