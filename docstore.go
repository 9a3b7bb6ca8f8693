package quizforge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DocumentStoreConfig identifies the hosted document backend. All four
// identifiers are required; anything missing is a configuration error
// surfaced before a single network call is made.
type DocumentStoreConfig struct {
	Endpoint     string
	ProjectID    string
	DatabaseID   string
	CollectionID string
	APIKey       string
}

// Validate reports every missing identifier at once.
func (c DocumentStoreConfig) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.ProjectID == "" {
		missing = append(missing, "project id")
	}
	if c.DatabaseID == "" {
		missing = append(missing, "database id")
	}
	if c.CollectionID == "" {
		missing = append(missing, "collection id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: document store missing %s", ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}

// DocumentStore is a QuizStore backed by an Appwrite-style document API.
type DocumentStore struct {
	client *Client
	cfg    DocumentStoreConfig
	policy QuestionsPolicy
}

func NewDocumentStore(cfg DocumentStoreConfig, policy QuestionsPolicy, opts ...ClientOption) (*DocumentStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientOpts := []ClientOption{WithHeader("X-Appwrite-Project", cfg.ProjectID)}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, WithHeader("X-Appwrite-Key", cfg.APIKey))
	}
	clientOpts = append(clientOpts, opts...)

	return &DocumentStore{
		client: NewClient(cfg.Endpoint, clientOpts...),
		cfg:    cfg,
		policy: policy,
	}, nil
}

func (s *DocumentStore) documentsPath() string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", s.cfg.DatabaseID, s.cfg.CollectionID)
}

// document mirrors the wire shape of a stored quiz. System fields carry the
// $ prefix.
type document struct {
	ID            string    `json:"$id"`
	CreatedAt     time.Time `json:"$createdAt"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	Questions     string    `json:"questions"`
	UserID        string    `json:"userId"`
	QuestionCount int       `json:"questionCount"`
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

func (d document) toQuiz() Quiz {
	return Quiz{
		ID:        d.ID,
		Title:     d.Title,
		Text:      d.Text,
		Questions: d.Questions,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
	}
}

func (s *DocumentStore) CreateQuiz(ctx context.Context, quiz *Quiz) error {
	encoded, err := EncodeQuestions(quiz.Questions, s.policy)
	if err != nil {
		return err
	}
	quiz.Questions = encoded

	payload := map[string]any{
		"documentId": quiz.ID,
		"data": map[string]any{
			"title":         quiz.Title,
			"text":          quiz.Text,
			"questions":     quiz.Questions,
			"userId":        quiz.UserID,
			"questionCount": quiz.QuestionCount(),
		},
	}
	var created document
	if err := s.client.PostJSON(ctx, s.documentsPath(), payload, &created); err != nil {
		return fmt.Errorf("failed to create quiz document: %w", err)
	}
	if created.ID != "" {
		quiz.ID = created.ID
	}
	return nil
}

func (s *DocumentStore) FetchUserQuizzes(ctx context.Context, userID string, opts ListOptions) ([]Quiz, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	opts = normalizeListOptions(opts)

	queries := []string{
		equalQuery("userId", userID),
		orderDescQuery("$createdAt"),
		limitQuery(opts.Limit),
		offsetQuery(opts.Offset),
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		queries = append(queries, searchQuery("text", search))
	}

	var list documentList
	if err := s.client.GetJSON(ctx, s.documentsPath()+queryString(queries), &list); err != nil {
		return nil, fmt.Errorf("failed to list quiz documents: %w", err)
	}

	quizzes := make([]Quiz, 0, len(list.Documents))
	for _, doc := range list.Documents {
		quizzes = append(quizzes, doc.toQuiz())
	}
	return quizzes, nil
}

func (s *DocumentStore) GetQuizByID(ctx context.Context, id string) (*Quiz, error) {
	var doc document
	err := s.client.GetJSON(ctx, s.documentsPath()+"/"+url.PathEscape(id), &doc)
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok && httpErr.Status == 404 {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
		}
		return nil, fmt.Errorf("failed to get quiz document: %w", err)
	}
	quiz := doc.toQuiz()
	return &quiz, nil
}

func (s *DocumentStore) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, s.documentsPath()+"/"+url.PathEscape(id)); err != nil {
		if httpErr, ok := asHTTPError(err); ok && httpErr.Status == 404 {
			return fmt.Errorf("%w: %s", ErrQuizNotFound, id)
		}
		return fmt.Errorf("failed to delete quiz document: %w", err)
	}
	return nil
}

// UserStats pages through the user's documents summing stored question
// counts. The backend reports the quiz total on every page.
func (s *DocumentStore) UserStats(ctx context.Context, userID string) (UserStats, error) {
	if userID == "" {
		return UserStats{}, ErrUserIDRequired
	}

	const pageSize = 100
	stats := UserStats{}
	offset := 0
	for {
		queries := []string{
			equalQuery("userId", userID),
			limitQuery(pageSize),
			offsetQuery(offset),
		}
		var list documentList
		if err := s.client.GetJSONCached(ctx, s.documentsPath()+queryString(queries), &list); err != nil {
			return UserStats{}, fmt.Errorf("failed to aggregate user stats: %w", err)
		}
		stats.Quizzes = list.Total
		for _, doc := range list.Documents {
			stats.Questions += doc.QuestionCount
		}
		offset += len(list.Documents)
		if len(list.Documents) == 0 || offset >= list.Total {
			return stats, nil
		}
	}
}

func asHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// Query builders for the document API's JSON query strings.

func jsonQuery(method, attribute string, values ...any) string {
	query := map[string]any{"method": method}
	if attribute != "" {
		query["attribute"] = attribute
	}
	if values != nil {
		query["values"] = values
	}
	encoded, _ := json.Marshal(query)
	return string(encoded)
}

func equalQuery(attribute string, value any) string { return jsonQuery("equal", attribute, value) }
func searchQuery(attribute, term string) string     { return jsonQuery("search", attribute, term) }
func orderDescQuery(attribute string) string        { return jsonQuery("orderDesc", attribute) }
func limitQuery(limit int) string                   { return jsonQuery("limit", "", limit) }
func offsetQuery(offset int) string                 { return jsonQuery("offset", "", offset) }

func queryString(queries []string) string {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}
	return "?" + params.Encode()
}
