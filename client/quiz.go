package client

import (
	"context"
	"fmt"
	"net/http"

	"ewintr.nl/vidqa/model"
)

func (c *Client) GenerateQuiz(ctx context.Context, videoID string, questionCount int) (*model.Quiz, error) {
	body := struct {
		VideoID       string `json:"videoId"`
		QuestionCount int    `json:"questionCount"`
	}{
		VideoID:       videoID,
		QuestionCount: questionCount,
	}
	var quiz model.Quiz
	if err := c.Call(ctx, http.MethodPost, "/quiz/generate", body, &quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

func (c *Client) Quiz(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/quiz/%s", id), nil, &quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// SubmitQuiz sends the full answer map, question id to selected option id,
// and returns the graded result.
func (c *Client) SubmitQuiz(ctx context.Context, id string, answers map[string]string) (*model.Result, error) {
	body := struct {
		Answers map[string]string `json:"answers"`
	}{
		Answers: answers,
	}
	var result model.Result
	if err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/quiz/%s/submit", id), body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// QuizResults fetches the latest graded attempt for a quiz.
func (c *Client) QuizResults(ctx context.Context, id string) (*model.Result, error) {
	var result model.Result
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/quiz/%s/results", id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
