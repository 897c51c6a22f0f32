package store

import (
	"context"
	"io"
	"sync"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

// videoAction is the closed set of state transitions for the video store.
type videoAction interface {
	videoAction()
}

type videoSetLoading struct{ loading bool }
type videoSetError struct{ message string }
type videoSetVideos struct{ videos []model.Video }
type videoAdd struct{ video model.Video }
type videoMergeStatus struct{ update model.StatusUpdate }
type videoSetLiked struct {
	id    string
	liked bool
}
type videoRemove struct{ id string }
type videoSetCurrent struct{ video *model.Video }
type videoAddWorking struct{ id string }
type videoRemoveWorking struct{ id string }

func (videoSetLoading) videoAction()    {}
func (videoSetError) videoAction()      {}
func (videoSetVideos) videoAction()     {}
func (videoAdd) videoAction()           {}
func (videoMergeStatus) videoAction()   {}
func (videoSetLiked) videoAction()      {}
func (videoRemove) videoAction()        {}
func (videoSetCurrent) videoAction()    {}
func (videoAddWorking) videoAction()    {}
func (videoRemoveWorking) videoAction() {}

// VideoStore owns the known videos, the current selection and the set of ids
// the backend is still working on. Operations call the backend and dispatch
// actions on completion, updates land in completion order.
type VideoStore struct {
	mu      sync.Mutex
	videos  []model.Video
	current *model.Video
	working map[string]bool
	loading bool
	err     string

	api    *client.Client
	logger *slog.Logger
}

func NewVideoStore(api *client.Client, logger *slog.Logger) *VideoStore {
	return &VideoStore{
		working: make(map[string]bool),
		api:     api,
		logger:  logger,
	}
}

func (s *VideoStore) apply(action videoAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case videoSetLoading:
		s.loading = a.loading
	case videoSetError:
		s.err = a.message
		s.loading = false
	case videoSetVideos:
		s.videos = a.videos
		s.err = ""
		s.loading = false
	case videoAdd:
		s.videos = append([]model.Video{a.video}, s.videos...)
	case videoMergeStatus:
		for i := range s.videos {
			if s.videos[i].ID != a.update.ID {
				continue
			}
			s.videos[i].Status = a.update.Status
			s.videos[i].Progress = model.ClampProgress(a.update.Progress)
			if a.update.Status == model.StatusFailed {
				s.videos[i].ErrorMessage = a.update.Message
			}
		}
	case videoSetLiked:
		for i := range s.videos {
			if s.videos[i].ID == a.id {
				s.videos[i].IsLiked = a.liked
			}
		}
	case videoRemove:
		kept := make([]model.Video, 0, len(s.videos))
		for _, v := range s.videos {
			if v.ID != a.id {
				kept = append(kept, v)
			}
		}
		s.videos = kept
		if s.current != nil && s.current.ID == a.id {
			s.current = nil
		}
	case videoSetCurrent:
		s.current = a.video
	case videoAddWorking:
		s.working[a.id] = true
	case videoRemoveWorking:
		delete(s.working, a.id)
	}
}

// List replaces the collection wholesale. On failure the previous videos stay
// visible and the error is recorded.
func (s *VideoStore) List(ctx context.Context) error {
	s.apply(videoSetLoading{loading: true})
	videos, err := s.api.Videos(ctx)
	if err != nil {
		s.apply(videoSetError{message: err.Error()})
		return err
	}
	s.apply(videoSetVideos{videos: videos})

	return nil
}

// SubmitURL posts a link. The new video is prepended and tracked as working.
// The error is also returned so a caller can show field-level feedback.
func (s *VideoStore) SubmitURL(ctx context.Context, url, title string) (*model.Video, error) {
	s.apply(videoSetLoading{loading: true})
	video, err := s.api.ProcessURL(ctx, url, title)
	if err != nil {
		s.apply(videoSetError{message: err.Error()})
		return nil, err
	}
	s.apply(videoAdd{video: *video})
	s.apply(videoAddWorking{id: video.ID})
	s.apply(videoSetLoading{loading: false})

	return video, nil
}

// SubmitFile uploads a video file. Title defaults to the file name.
func (s *VideoStore) SubmitFile(ctx context.Context, filename string, file io.Reader, title string) (*model.Video, error) {
	s.apply(videoSetLoading{loading: true})
	video, err := s.api.UploadVideo(ctx, filename, file, title)
	if err != nil {
		s.apply(videoSetError{message: err.Error()})
		return nil, err
	}
	s.apply(videoAdd{video: *video})
	s.apply(videoAddWorking{id: video.ID})
	s.apply(videoSetLoading{loading: false})

	return video, nil
}

// Delete removes the video after the backend confirms. No optimistic removal.
func (s *VideoStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteVideo(ctx, id); err != nil {
		s.apply(videoSetError{message: err.Error()})
		return err
	}
	s.apply(videoRemove{id: id})
	s.apply(videoRemoveWorking{id: id})

	return nil
}

// Select is a pure local transition, no network call.
func (s *VideoStore) Select(video *model.Video) {
	if video == nil {
		s.apply(videoSetCurrent{})
		return
	}
	v := *video
	s.apply(videoSetCurrent{video: &v})
}

// PollStatus fetches the status of one video. Once the backend reports a
// terminal status the id leaves the working set and the fresh fields are
// merged in. Scheduling is the caller's job, the store owns no timer.
// Failures are logged, not stored, the next tick simply polls again.
func (s *VideoStore) PollStatus(ctx context.Context, id string) (*model.StatusUpdate, error) {
	status, err := s.api.VideoStatus(ctx, id)
	if err != nil {
		s.logger.Error("failed to poll video status", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}
	if !status.Status.Working() {
		s.apply(videoRemoveWorking{id: id})
		s.apply(videoMergeStatus{update: *status})
	}

	return status, nil
}

// ToggleLike flips the like flag on the backend and mirrors the result.
func (s *VideoStore) ToggleLike(ctx context.Context, id string) error {
	liked, err := s.api.ToggleLike(ctx, id)
	if err != nil {
		s.apply(videoSetError{message: err.Error()})
		return err
	}
	s.apply(videoSetLiked{id: id, liked: liked})

	return nil
}

func (s *VideoStore) Videos() []model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	videos := make([]model.Video, len(s.videos))
	copy(videos, s.videos)

	return videos
}

func (s *VideoStore) Current() *model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	v := *s.current

	return &v
}

// Working lists the ids of videos still being processed.
func (s *VideoStore) Working() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.working))
	for id := range s.working {
		ids = append(ids, id)
	}

	return ids
}

func (s *VideoStore) IsWorking(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.working[id]
}

func (s *VideoStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *VideoStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
