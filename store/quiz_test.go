package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/model"
	"ewintr.nl/vidqa/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizStore(t *testing.T, handler http.Handler) *store.QuizStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return store.NewQuizStore(client.New(srv.URL, testLogger()), testLogger())
}

func testQuiz(questions int) model.Quiz {
	quiz := model.Quiz{ID: "q1", VideoID: "v1", QuestionCount: questions}
	for i := 0; i < questions; i++ {
		id := string(rune('a' + i))
		quiz.Questions = append(quiz.Questions, model.Question{
			ID:       "question-" + id,
			Question: "what about " + id + "?",
			Options: []model.Option{
				{ID: "opt-" + id + "-1", Text: "first"},
				{ID: "opt-" + id + "-2", Text: "second"},
			},
		})
	}

	return quiz
}

func generateHandler(quiz model.Quiz) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VideoID       string `json:"videoId"`
			QuestionCount int    `json:"questionCount"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(quiz)
	})

	return mux
}

func TestQuizStoreGenerate(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(3)))

	quiz, err := s.Generate(context.Background(), "v1", 3)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, 3, s.TotalQuestions())
	assert.Equal(t, 0, s.Index())
	assert.Empty(t, s.Answers())
	assert.Nil(t, s.Result())
	assert.False(t, s.Loading())

	question := s.CurrentQuestion()
	require.NotNil(t, question)
	assert.Equal(t, "question-a", question.ID)
}

func TestQuizStoreGenerateFailure(t *testing.T) {
	s := quizStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"video still processing"}`, http.StatusConflict)
	}))

	_, err := s.Generate(context.Background(), "v1", 3)
	require.Error(t, err)
	assert.Equal(t, "video still processing", s.Err())
	assert.Nil(t, s.Quiz())
	assert.False(t, s.Loading())
}

func TestQuizStoreGenerateResetsPreviousAttempt(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(2)))

	_, err := s.Generate(context.Background(), "v1", 2)
	require.NoError(t, err)
	s.Answer("question-a", "opt-a-1")
	s.GoTo(1)

	_, err = s.Generate(context.Background(), "v1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Index())
	assert.Empty(t, s.Answers())
}

func TestQuizStoreAnswer(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(2)))
	_, err := s.Generate(context.Background(), "v1", 2)
	require.NoError(t, err)

	s.Answer("question-a", "opt-a-1")
	assert.Equal(t, map[string]string{"question-a": "opt-a-1"}, s.Answers())

	// changing the answer overwrites, it never duplicates
	s.Answer("question-a", "opt-a-2")
	assert.Equal(t, map[string]string{"question-a": "opt-a-2"}, s.Answers())
	assert.Equal(t, 1, s.AnsweredCount())

	// answers for questions the quiz does not have are dropped
	s.Answer("question-z", "opt-z-1")
	assert.Equal(t, 1, s.AnsweredCount())
}

func TestQuizStoreNavigation(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(3)))
	_, err := s.Generate(context.Background(), "v1", 3)
	require.NoError(t, err)

	s.Prev()
	assert.Equal(t, 0, s.Index(), "prev at the start stays put")

	s.Next()
	s.Next()
	assert.Equal(t, 2, s.Index())
	s.Next()
	assert.Equal(t, 2, s.Index(), "next at the end stays put")

	s.GoTo(-1)
	assert.Equal(t, 2, s.Index())
	s.GoTo(3)
	assert.Equal(t, 2, s.Index())
	s.GoTo(1)
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, "question-b", s.CurrentQuestion().ID)
}

func TestQuizStoreProgress(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(10)))

	assert.Equal(t, 0.0, s.Progress(), "no quiz means no progress")

	_, err := s.Generate(context.Background(), "v1", 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Progress())

	for _, id := range []string{"question-a", "question-b", "question-c", "question-d"} {
		s.Answer(id, "opt-x")
	}
	assert.Equal(t, 40.0, s.Progress())
}

func TestQuizStoreSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/quiz/generate", generateHandler(testQuiz(5)))
	mux.HandleFunc("/quiz/q1/submit", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Answers, 5)
		json.NewEncoder(w).Encode(model.Result{
			ID:            "r1",
			QuizID:        "q1",
			Score:         4,
			Total:         5,
			Percentage:    80,
			Analysis:      "solid grasp of the material",
			KnowledgeGaps: []string{"question-e"},
		})
	})
	s := quizStore(t, mux)

	_, err := s.Generate(context.Background(), "v1", 5)
	require.NoError(t, err)
	for _, q := range s.Quiz().Questions {
		s.Answer(q.ID, q.Options[0].ID)
	}

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 80.0, result.Percentage)

	stored := s.Result()
	require.NotNil(t, stored)
	assert.Equal(t, "r1", stored.ID)
	assert.Len(t, s.Answers(), 5, "answers stay around for review")
	assert.False(t, s.Loading())
}

func TestQuizStoreSubmitWithoutQuiz(t *testing.T) {
	s := quizStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no call expected")
	}))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestQuizStoreSubmitFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/quiz/generate", generateHandler(testQuiz(2)))
	mux.HandleFunc("/quiz/q1/submit", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"grading unavailable"}`, http.StatusServiceUnavailable)
	})
	s := quizStore(t, mux)

	_, err := s.Generate(context.Background(), "v1", 2)
	require.NoError(t, err)
	s.Answer("question-a", "opt-a-1")

	_, err = s.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, s.Result())
	assert.Equal(t, "grading unavailable", s.Err())
	assert.Len(t, s.Answers(), 1, "a failed submission loses nothing")
}

func TestQuizStoreReset(t *testing.T) {
	s := quizStore(t, generateHandler(testQuiz(2)))
	_, err := s.Generate(context.Background(), "v1", 2)
	require.NoError(t, err)
	s.Answer("question-a", "opt-a-1")
	s.GoTo(1)

	s.Reset()
	assert.Nil(t, s.Quiz())
	assert.Equal(t, 0, s.Index())
	assert.Empty(t, s.Answers())
	assert.Nil(t, s.CurrentQuestion())
	assert.Equal(t, 0.0, s.Progress())
}
