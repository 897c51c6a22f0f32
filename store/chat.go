package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

// chatAction is the closed set of state transitions for the chat store.
type chatAction interface {
	chatAction()
}

type chatSetLoading struct{ loading bool }
type chatSetError struct{ message string }

// chatSetVideo switches the active video and clears the transcript before any
// new history loads, so messages never leak across videos.
type chatSetVideo struct{ videoID string }

// chatSetMessages and chatAppend carry the video id they belong to. The
// reducer drops them when the active video changed while the call was in
// flight.
type chatSetMessages struct {
	videoID  string
	messages []model.ChatMessage
}
type chatAppend struct{ message model.ChatMessage }
type chatMarkDelivery struct {
	id       string
	delivery model.Delivery
}
type chatClear struct{}

func (chatSetLoading) chatAction()   {}
func (chatSetError) chatAction()     {}
func (chatSetVideo) chatAction()     {}
func (chatSetMessages) chatAction()  {}
func (chatAppend) chatAction()       {}
func (chatMarkDelivery) chatAction() {}
func (chatClear) chatAction()        {}

// ChatStore owns the message transcript for one active video at a time.
type ChatStore struct {
	mu       sync.Mutex
	messages []model.ChatMessage
	videoID  string
	loading  bool
	err      string
	seq      int64

	api    *client.Client
	logger *slog.Logger
}

func NewChatStore(api *client.Client, logger *slog.Logger) *ChatStore {
	return &ChatStore{
		api:    api,
		logger: logger,
	}
}

func (s *ChatStore) apply(action chatAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case chatSetLoading:
		s.loading = a.loading
	case chatSetError:
		s.err = a.message
		s.loading = false
	case chatSetVideo:
		s.videoID = a.videoID
		s.messages = nil
		s.err = ""
	case chatSetMessages:
		if a.videoID != s.videoID {
			return
		}
		s.messages = a.messages
		s.loading = false
	case chatAppend:
		if a.message.VideoID != s.videoID {
			return
		}
		s.messages = append(s.messages, a.message)
	case chatMarkDelivery:
		for i := range s.messages {
			if s.messages[i].ID == a.id {
				s.messages[i].Delivery = a.delivery
			}
		}
	case chatClear:
		s.messages = nil
	}
}

// Init switches the store to a video and loads its history. A video without
// history is first contact, not a failure, the transcript simply starts
// empty.
func (s *ChatStore) Init(ctx context.Context, videoID string) error {
	s.apply(chatSetVideo{videoID: videoID})
	s.apply(chatSetLoading{loading: true})
	history, err := s.api.ChatHistory(ctx, videoID)
	if err != nil {
		if !client.IsNotFound(err) {
			s.logger.Warn("failed to load chat history", slog.String("videoid", videoID), slog.String("error", err.Error()))
		}
		s.apply(chatSetMessages{videoID: videoID})
		return nil
	}
	for i := range history {
		history[i].VideoID = videoID
		history[i].Delivery = model.DeliveryDelivered
	}
	s.apply(chatSetMessages{videoID: videoID, messages: history})

	return nil
}

// Send appends the user's message before the backend answers, so the text
// shows instantly. On failure the message stays in the transcript, marked
// failed, and the error is surfaced. No automatic retry.
func (s *ChatStore) Send(ctx context.Context, text string) (*client.ChatAnswer, error) {
	videoID := s.VideoID()
	if videoID == "" {
		return nil, nil
	}

	userMsg := model.ChatMessage{
		ID:        s.nextID(),
		VideoID:   videoID,
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
		Delivery:  model.DeliveryPending,
	}
	s.apply(chatAppend{message: userMsg})
	s.apply(chatSetLoading{loading: true})

	answer, err := s.api.SendChat(ctx, videoID, text)
	if err != nil {
		s.apply(chatMarkDelivery{id: userMsg.ID, delivery: model.DeliveryFailed})
		s.apply(chatSetError{message: err.Error()})
		return nil, err
	}

	s.apply(chatMarkDelivery{id: userMsg.ID, delivery: model.DeliveryDelivered})
	s.apply(chatAppend{message: model.ChatMessage{
		ID:         s.nextID(),
		VideoID:    videoID,
		Role:       model.RoleAssistant,
		Content:    answer.Message,
		References: answer.References,
		CreatedAt:  time.Now(),
		Delivery:   model.DeliveryDelivered,
	}})
	s.apply(chatSetLoading{loading: false})

	return answer, nil
}

// Clear empties the transcript. Deleting the remote history is best effort,
// a failure there is logged and the local transcript empties regardless.
func (s *ChatStore) Clear(ctx context.Context) {
	videoID := s.VideoID()
	if videoID != "" {
		if err := s.api.ClearChatHistory(ctx, videoID); err != nil {
			s.logger.Error("failed to clear chat history", slog.String("videoid", videoID), slog.String("error", err.Error()))
		}
	}
	s.apply(chatClear{})
}

func (s *ChatStore) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]model.ChatMessage, len(s.messages))
	copy(messages, s.messages)

	return messages
}

func (s *ChatStore) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.videoID
}

func (s *ChatStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *ChatStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *ChatStore) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++

	return fmt.Sprintf("local-%d", s.seq)
}
