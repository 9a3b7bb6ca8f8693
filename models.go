package quizforge

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuizQuestion is the canonical question record every generation backend is
// normalized into. A question missing either sentence is never persisted or
// displayed.
type QuizQuestion struct {
	OriginalSentence string   `json:"original_sentence"`
	PartialSentence  string   `json:"partial_sentence"`
	FalseSentences   []string `json:"false_sentences"`
}

// Quiz is a persisted quiz owned by a single user. Questions are stored as a
// JSON-encoded string because the backing stores persist them as text.
type Quiz struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Questions string    `json:"questions"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeQuestions parses the stored questions payload.
func (q *Quiz) DecodeQuestions() ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(q.Questions), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode quiz questions: %w", err)
	}
	return questions, nil
}

// QuestionCount reports how many questions the stored payload holds, zero when
// the payload is unreadable.
func (q *Quiz) QuestionCount() int {
	questions, err := q.DecodeQuestions()
	if err != nil {
		return 0
	}
	return len(questions)
}

// GenerationRequest is the body sent to the generation backend.
type GenerationRequest struct {
	Text          string `json:"text"`
	NumStatements int    `json:"num_statements"`
}

// UserStats aggregates a user's persisted quizzes.
type UserStats struct {
	Quizzes   int `json:"quizzes"`
	Questions int `json:"questions"`
}

// ListOptions controls pagination and filtering of quiz listings.
type ListOptions struct {
	Offset int
	Limit  int
	Search string
}
