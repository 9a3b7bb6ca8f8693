package quizforge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const defaultListLimit = 25

// QuizStore is document CRUD over a user's quizzes. Listings always filter by
// exact user-id equality and return newest-first.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	FetchUserQuizzes(ctx context.Context, userID string, opts ListOptions) ([]Quiz, error)
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	UserStats(ctx context.Context, userID string) (UserStats, error)
}

// QuestionsPolicy controls how a malformed caller-supplied questions payload
// is handled before a write.
type QuestionsPolicy int

const (
	// LenientQuestions replaces unparsable JSON with a single placeholder
	// question so a save never fails over malformed questions.
	LenientQuestions QuestionsPolicy = iota
	// StrictQuestions rejects unparsable JSON with a validation error.
	StrictQuestions
)

// ParseQuestionsPolicy maps a config string onto a policy. Lenient is the
// default.
func ParseQuestionsPolicy(s string) QuestionsPolicy {
	if s == "strict" {
		return StrictQuestions
	}
	return LenientQuestions
}

// placeholderQuestions is what a lenient store writes in place of a questions
// payload it could not parse.
func placeholderQuestions() string {
	placeholder := []QuizQuestion{{
		OriginalSentence: "The questions for this quiz could not be loaded.",
		PartialSentence:  "The questions for this quiz...",
		FalseSentences:   []string{},
	}}
	encoded, _ := json.Marshal(placeholder)
	return string(encoded)
}

// EncodeQuestions serializes the questions field for persistence. Typed
// slices are marshaled; strings are validated as JSON and either replaced
// with a placeholder (lenient) or rejected (strict) when unparsable.
func EncodeQuestions(questions any, policy QuestionsPolicy) (string, error) {
	switch q := questions.(type) {
	case []QuizQuestion:
		encoded, err := json.Marshal(q)
		if err != nil {
			return "", fmt.Errorf("failed to encode questions: %w", err)
		}
		return string(encoded), nil
	case string:
		var parsed []QuizQuestion
		if err := json.Unmarshal([]byte(q), &parsed); err != nil {
			if policy == StrictQuestions {
				return "", fmt.Errorf("questions payload is not valid JSON: %w", err)
			}
			return placeholderQuestions(), nil
		}
		return q, nil
	default:
		return "", fmt.Errorf("unsupported questions type %T", questions)
	}
}

// NewQuizStore builds the store backend named by cfg.StoreBackend.
func NewQuizStore(cfg *Config, log *zap.SugaredLogger) (QuizStore, error) {
	switch cfg.StoreBackend {
	case "", StoreSQLite:
		return OpenSQLiteStore(cfg.SQLitePath, cfg.Policy)
	case StoreDocument:
		opts := []ClientOption{WithClientLogger(log)}
		if cfg.RedisAddr != "" {
			cache, err := NewRedisCache(cfg.RedisAddr, log)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithCache(cache, 0))
		} else {
			opts = append(opts, WithCache(NewMemoryCache(), 0))
		}
		return NewDocumentStore(cfg.DocStore, cfg.Policy, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown quiz store %q", ErrConfig, cfg.StoreBackend)
	}
}

func normalizeListOptions(opts ListOptions) ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
