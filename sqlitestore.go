package quizforge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the local QuizStore used by the commands and tests.
type SQLiteStore struct {
	db     *sql.DB
	policy QuestionsPolicy
}

// OpenSQLiteStore opens (and if necessary initializes) a quiz database.
func OpenSQLiteStore(path string, policy QuestionsPolicy) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", ErrConfig)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise open its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, policy: policy}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	query := `CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		questions TEXT NOT NULL,
		question_count INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create quizzes table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id, created_at)`); err != nil {
		return fmt.Errorf("failed to create quizzes index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateQuiz(ctx context.Context, quiz *Quiz) error {
	encoded, err := EncodeQuestions(quiz.Questions, s.policy)
	if err != nil {
		return err
	}
	quiz.Questions = encoded

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO quizzes (id, title, body, questions, question_count, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		quiz.ID, quiz.Title, quiz.Text, quiz.Questions, quiz.QuestionCount(), quiz.UserID, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FetchUserQuizzes(ctx context.Context, userID string, opts ListOptions) ([]Quiz, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	opts = normalizeListOptions(opts)

	query := "SELECT id, title, body, questions, user_id, created_at FROM quizzes WHERE user_id = ?"
	args := []any{userID}
	if search := strings.TrimSpace(opts.Search); search != "" {
		query += " AND body LIKE ?"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []Quiz
	for rows.Next() {
		var quiz Quiz
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Text, &quiz.Questions, &quiz.UserID, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *SQLiteStore) GetQuizByID(ctx context.Context, id string) (*Quiz, error) {
	var quiz Quiz
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, body, questions, user_id, created_at FROM quizzes WHERE id = ?", id,
	).Scan(&quiz.ID, &quiz.Title, &quiz.Text, &quiz.Questions, &quiz.UserID, &quiz.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

func (s *SQLiteStore) DeleteQuiz(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM quizzes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrQuizNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) UserStats(ctx context.Context, userID string) (UserStats, error) {
	if userID == "" {
		return UserStats{}, ErrUserIDRequired
	}

	var stats UserStats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(question_count), 0) FROM quizzes WHERE user_id = ?", userID,
	).Scan(&stats.Quizzes, &stats.Questions)
	if err != nil {
		return UserStats{}, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return stats, nil
}
