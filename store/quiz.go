package store

import (
	"context"
	"sync"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

// quizAction is the closed set of state transitions for the quiz store.
type quizAction interface {
	quizAction()
}

type quizSetLoading struct{ loading bool }
type quizSetError struct{ message string }

// quizSet replaces the active quiz and resets position, answers and results.
type quizSet struct{ quiz model.Quiz }
type quizSetAnswer struct {
	questionID string
	optionID   string
}
type quizSetIndex struct{ index int }
type quizSetResult struct{ result model.Result }
type quizReset struct{}

func (quizSetLoading) quizAction() {}
func (quizSetError) quizAction()   {}
func (quizSet) quizAction()        {}
func (quizSetAnswer) quizAction()  {}
func (quizSetIndex) quizAction()   {}
func (quizSetResult) quizAction()  {}
func (quizReset) quizAction()      {}

// QuizStore owns one quiz attempt: the question set, the position, the answer
// map and, after submission, the graded result. Answers survive submission so
// the attempt can be reviewed next to the result.
type QuizStore struct {
	mu      sync.Mutex
	quiz    *model.Quiz
	index   int
	answers map[string]string
	result  *model.Result
	loading bool
	err     string

	api    *client.Client
	logger *slog.Logger
}

func NewQuizStore(api *client.Client, logger *slog.Logger) *QuizStore {
	return &QuizStore{
		answers: make(map[string]string),
		api:     api,
		logger:  logger,
	}
}

func (s *QuizStore) apply(action quizAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case quizSetLoading:
		s.loading = a.loading
	case quizSetError:
		s.err = a.message
		s.loading = false
	case quizSet:
		quiz := a.quiz
		s.quiz = &quiz
		s.index = 0
		s.answers = make(map[string]string)
		s.result = nil
		s.err = ""
		s.loading = false
	case quizSetAnswer:
		// Answer keys stay a subset of the quiz's question ids.
		if s.quiz == nil || !s.hasQuestion(a.questionID) {
			return
		}
		s.answers[a.questionID] = a.optionID
	case quizSetIndex:
		// Out-of-range navigation is absorbed, not an error.
		if s.quiz == nil || a.index < 0 || a.index >= len(s.quiz.Questions) {
			return
		}
		s.index = a.index
	case quizSetResult:
		result := a.result
		s.result = &result
		s.loading = false
	case quizReset:
		s.quiz = nil
		s.index = 0
		s.answers = make(map[string]string)
		s.result = nil
		s.loading = false
		s.err = ""
	}
}

func (s *QuizStore) hasQuestion(id string) bool {
	for _, q := range s.quiz.Questions {
		if q.ID == id {
			return true
		}
	}

	return false
}

// Generate requests a fresh quiz for a video.
func (s *QuizStore) Generate(ctx context.Context, videoID string, questionCount int) (*model.Quiz, error) {
	s.apply(quizSetLoading{loading: true})
	quiz, err := s.api.GenerateQuiz(ctx, videoID, questionCount)
	if err != nil {
		s.apply(quizSetError{message: err.Error()})
		return nil, err
	}
	s.apply(quizSet{quiz: *quiz})

	return quiz, nil
}

// Load fetches a previously generated quiz, with the same reset semantics as
// Generate.
func (s *QuizStore) Load(ctx context.Context, quizID string) (*model.Quiz, error) {
	s.apply(quizSetLoading{loading: true})
	quiz, err := s.api.Quiz(ctx, quizID)
	if err != nil {
		s.apply(quizSetError{message: err.Error()})
		return nil, err
	}
	s.apply(quizSet{quiz: *quiz})

	return quiz, nil
}

// Answer records a selection locally, overwriting any prior one for the same
// question. Nothing is transmitted until Submit.
func (s *QuizStore) Answer(questionID, optionID string) {
	s.apply(quizSetAnswer{questionID: questionID, optionID: optionID})
}

func (s *QuizStore) GoTo(index int) {
	s.apply(quizSetIndex{index: index})
}

func (s *QuizStore) Next() {
	s.GoTo(s.Index() + 1)
}

func (s *QuizStore) Prev() {
	s.GoTo(s.Index() - 1)
}

// Submit sends the full answer map and stores the graded result. The answers
// stay in place for a review pass.
func (s *QuizStore) Submit(ctx context.Context) (*model.Result, error) {
	s.mu.Lock()
	if s.quiz == nil {
		s.mu.Unlock()
		return nil, nil
	}
	quizID := s.quiz.ID
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	s.mu.Unlock()

	s.apply(quizSetLoading{loading: true})
	result, err := s.api.SubmitQuiz(ctx, quizID, answers)
	if err != nil {
		s.apply(quizSetError{message: err.Error()})
		return nil, err
	}
	s.apply(quizSetResult{result: *result})

	return result, nil
}

// Reset returns to the initial empty state, used when abandoning an attempt.
func (s *QuizStore) Reset() {
	s.apply(quizReset{})
}

func (s *QuizStore) Quiz() *model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return nil
	}
	quiz := *s.quiz

	return &quiz
}

func (s *QuizStore) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index
}

func (s *QuizStore) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	return answers
}

func (s *QuizStore) Result() *model.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	result := *s.result

	return &result
}

// CurrentQuestion returns the question at the current position, or nil when
// no quiz is active.
func (s *QuizStore) CurrentQuestion() *model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil || s.index < 0 || s.index >= len(s.quiz.Questions) {
		return nil
	}
	question := s.quiz.Questions[s.index]

	return &question
}

func (s *QuizStore) TotalQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return 0
	}

	return len(s.quiz.Questions)
}

func (s *QuizStore) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.answers)
}

// Progress is the answered share as a percentage, 0 for an empty quiz.
func (s *QuizStore) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil || len(s.quiz.Questions) == 0 {
		return 0
	}
	progress := float64(len(s.answers)) / float64(len(s.quiz.Questions)) * 100
	if progress > 100 {
		progress = 100
	}

	return progress
}

func (s *QuizStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *QuizStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
