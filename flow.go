package quizforge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const saveTimeout = 30 * time.Second

// Flow drives one logical generate-quiz operation:
// requesting -> extracting -> normalizing -> ready, or failed. Starting a new
// generation for the same user cancels that user's in-flight one; only the
// most recent attempt's result is honored. Different users never supersede
// each other. A successful result is followed by a best-effort save that never
// affects the already-returned questions.
type Flow struct {
	gen      Generator
	store    QuizStore
	notifier Notifier
	log      *zap.SugaredLogger

	mu       sync.Mutex
	attempts map[string]*flowAttempt

	saves sync.WaitGroup
}

// flowAttempt tracks one user's in-flight generation.
type flowAttempt struct {
	seq    uint64
	cancel context.CancelFunc
}

type FlowOption func(*Flow)

// WithStore enables the post-generation save.
func WithStore(store QuizStore) FlowOption {
	return func(f *Flow) { f.store = store }
}

// WithNotifier routes secondary failures (save errors, drop warnings) to a
// notification surface.
func WithNotifier(n Notifier) FlowOption {
	return func(f *Flow) { f.notifier = n }
}

// WithFlowLogger sets the flow logger.
func WithFlowLogger(log *zap.SugaredLogger) FlowOption {
	return func(f *Flow) { f.log = log }
}

func NewFlow(gen Generator, opts ...FlowOption) *Flow {
	f := &Flow{
		gen:      gen,
		log:      zap.NewNop().Sugar(),
		attempts: make(map[string]*flowAttempt),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.notifier == nil {
		f.notifier = NewLogNotifier(f.log)
	}
	return f
}

// GenerationResult is a ready quiz handed back to the caller. QuizID is set
// only when a save was requested; the save itself runs in the background.
type GenerationResult struct {
	QuizID    string         `json:"quiz_id,omitempty"`
	Questions []QuizQuestion `json:"questions"`
	Dropped   int            `json:"dropped"`
}

// Generate runs the full pipeline for one attempt. userID and title control
// the best-effort save: with an empty userID or no store configured the
// questions are returned without persisting anything.
func (f *Flow) Generate(ctx context.Context, userID, title, text string, numStatements int) (*GenerationResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if numStatements <= 0 {
		numStatements = 3
	}

	ctx, id := f.begin(ctx, userID)
	defer f.finish(userID, id)

	f.log.Infow("generation requested", "attempt", id, "user_id", userID, "text_len", len(text), "num_statements", numStatements)

	raw, err := f.gen.GenerateRaw(ctx, GenerationRequest{Text: text, NumStatements: numStatements})
	if err != nil {
		if f.superseded(userID, id, ctx) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	if f.superseded(userID, id, ctx) {
		return nil, ErrSuperseded
	}

	items := ExtractQuestions(raw)
	if items == nil {
		f.notifier.Notify(errorNotice(ErrUnrecognizedShape.Error()))
		return nil, ErrUnrecognizedShape
	}

	questions, dropped := NormalizeQuestions(items)
	if len(questions) == 0 {
		f.notifier.Notify(errorNotice(ErrNoQuestions.Error()))
		return nil, ErrNoQuestions
	}
	if dropped > 0 {
		f.log.Warnw("dropped unusable question items", "attempt", id, "dropped", dropped)
		f.notifier.Notify(warningNotice(fmt.Sprintf("Skipped %d unusable question items", dropped)))
	}

	result := &GenerationResult{Questions: questions, Dropped: dropped}
	f.log.Infow("generation ready", "attempt", id, "questions", len(questions))

	if f.store != nil && userID != "" {
		result.QuizID = uuid.NewString()
		f.saveQuiz(result.QuizID, userID, title, text, questions)
	}
	return result, nil
}

// begin registers a new attempt for owner, cancelling the owner's in-flight
// one. Attempts of other owners are untouched.
func (f *Flow) begin(parent context.Context, owner string) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt := f.attempts[owner]
	if attempt == nil {
		attempt = &flowAttempt{}
		f.attempts[owner] = attempt
	}
	if attempt.cancel != nil {
		attempt.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	attempt.seq++
	attempt.cancel = cancel
	return ctx, attempt.seq
}

// finish releases the attempt's context. The owner's entry stays behind with
// its sequence number so an older superseded attempt waking up late still
// reads as superseded rather than as a plain cancel.
func (f *Flow) finish(owner string, id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt := f.attempts[owner]
	if attempt != nil && attempt.seq == id && attempt.cancel != nil {
		attempt.cancel()
		attempt.cancel = nil
	}
}

// superseded reports whether a newer attempt of the same owner replaced this
// one. A context cancelled by anything else (caller timeout, shutdown) is not
// a supersede.
func (f *Flow) superseded(owner string, id uint64, ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt := f.attempts[owner]
	return attempt != nil && attempt.seq != id && ctx.Err() != nil
}

// saveQuiz persists the generated quiz without blocking the ready result.
// Failures are reported as sticky notifications and never unwind the quiz the
// caller already has.
func (f *Flow) saveQuiz(quizID, userID, title, text string, questions []QuizQuestion) {
	encoded, err := EncodeQuestions(questions, LenientQuestions)
	if err != nil {
		f.notifier.Notify(errorNotice("Failed to save quiz: " + err.Error()))
		return
	}

	quiz := &Quiz{
		ID:        quizID,
		Title:     title,
		Text:      text,
		Questions: encoded,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	f.saves.Add(1)
	go func() {
		defer f.saves.Done()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := f.store.CreateQuiz(ctx, quiz); err != nil {
			f.log.Errorw("quiz save failed", "quiz_id", quiz.ID, "error", err)
			f.notifier.Notify(errorNotice("Failed to save quiz: " + err.Error()))
			return
		}
		f.log.Infow("quiz saved", "quiz_id", quiz.ID, "user_id", userID)
	}()
}

// WaitSaves blocks until pending background saves settle. Used on shutdown
// and by tests.
func (f *Flow) WaitSaves() {
	f.saves.Wait()
}
