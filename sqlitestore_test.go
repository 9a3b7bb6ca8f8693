package quizforge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(":memory:", LenientQuestions)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testQuiz(id, userID string, createdAt time.Time, questions []QuizQuestion) *Quiz {
	encoded, _ := EncodeQuestions(questions, StrictQuestions)
	return &Quiz{
		ID:        id,
		Title:     "Quiz " + id,
		Text:      "Source text for " + id,
		Questions: encoded,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

func TestOpenSQLiteStore_EmptyPath(t *testing.T) {
	_, err := OpenSQLiteStore("", LenientQuestions)
	require.ErrorIs(t, err, ErrConfig)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	questions := []QuizQuestion{
		{
			OriginalSentence: "The sky is blue.",
			PartialSentence:  "The sky is...",
			FalseSentences:   []string{"The sky is green.", "The sky is red."},
		},
		{
			OriginalSentence: "Water boils at 100C.",
			PartialSentence:  "Water boils at...",
			FalseSentences:   []string{"Water boils at 50C."},
		},
	}
	quiz := testQuiz("q1", "user-1", time.Now().UTC(), questions)
	require.NoError(t, store.CreateQuiz(ctx, quiz))

	fetched, err := store.GetQuizByID(ctx, "q1")
	require.NoError(t, err)
	require.Equal(t, quiz.Title, fetched.Title)
	require.Equal(t, quiz.Text, fetched.Text)
	require.Equal(t, "user-1", fetched.UserID)

	decoded, err := fetched.DecodeQuestions()
	require.NoError(t, err)
	require.Len(t, decoded, len(questions))
	for i := range questions {
		require.Equal(t, questions[i].OriginalSentence, decoded[i].OriginalSentence)
		require.Equal(t, questions[i].PartialSentence, decoded[i].PartialSentence)
		require.Equal(t, questions[i].FalseSentences, decoded[i].FalseSentences)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetQuizByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSQLiteStore_FetchUserQuizzes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	questions := []QuizQuestion{{OriginalSentence: "a", PartialSentence: "b"}}

	for i := 0; i < 5; i++ {
		quiz := testQuiz(fmt.Sprintf("q%d", i), "user-1", base.Add(time.Duration(i)*time.Hour), questions)
		require.NoError(t, store.CreateQuiz(ctx, quiz))
	}
	require.NoError(t, store.CreateQuiz(ctx, testQuiz("other", "user-2", base, questions)))

	quizzes, err := store.FetchUserQuizzes(ctx, "user-1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, quizzes, 5)
	// Newest first.
	require.Equal(t, "q4", quizzes[0].ID)
	require.Equal(t, "q0", quizzes[4].ID)

	// Pagination.
	page, err := store.FetchUserQuizzes(ctx, "user-1", ListOptions{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "q2", page[0].ID)
	require.Equal(t, "q1", page[1].ID)
}

func TestSQLiteStore_FetchUserQuizzes_Search(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	questions := []QuizQuestion{{OriginalSentence: "a", PartialSentence: "b"}}

	apples := testQuiz("apples", "user-1", time.Now().UTC(), questions)
	apples.Text = "A text about apples and orchards."
	require.NoError(t, store.CreateQuiz(ctx, apples))

	oceans := testQuiz("oceans", "user-1", time.Now().UTC(), questions)
	oceans.Text = "A text about oceans and tides."
	require.NoError(t, store.CreateQuiz(ctx, oceans))

	quizzes, err := store.FetchUserQuizzes(ctx, "user-1", ListOptions{Search: "orchards"})
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	require.Equal(t, "apples", quizzes[0].ID)
}

func TestSQLiteStore_FetchUserQuizzes_RequiresUser(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FetchUserQuizzes(context.Background(), "", ListOptions{})
	require.ErrorIs(t, err, ErrUserIDRequired)
}

func TestSQLiteStore_DeleteQuiz(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	questions := []QuizQuestion{{OriginalSentence: "a", PartialSentence: "b"}}

	require.NoError(t, store.CreateQuiz(ctx, testQuiz("q1", "user-1", time.Now().UTC(), questions)))
	require.NoError(t, store.DeleteQuiz(ctx, "q1"))

	_, err := store.GetQuizByID(ctx, "q1")
	require.ErrorIs(t, err, ErrQuizNotFound)

	require.ErrorIs(t, store.DeleteQuiz(ctx, "q1"), ErrQuizNotFound)
}

func TestSQLiteStore_UserStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	two := []QuizQuestion{
		{OriginalSentence: "a", PartialSentence: "b"},
		{OriginalSentence: "c", PartialSentence: "d"},
	}
	three := []QuizQuestion{
		{OriginalSentence: "a", PartialSentence: "b"},
		{OriginalSentence: "c", PartialSentence: "d"},
		{OriginalSentence: "e", PartialSentence: "f"},
	}
	require.NoError(t, store.CreateQuiz(ctx, testQuiz("q1", "user-1", time.Now().UTC(), two)))
	require.NoError(t, store.CreateQuiz(ctx, testQuiz("q2", "user-1", time.Now().UTC(), three)))
	require.NoError(t, store.CreateQuiz(ctx, testQuiz("q3", "user-2", time.Now().UTC(), two)))

	stats, err := store.UserStats(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, UserStats{Quizzes: 2, Questions: 5}, stats)

	empty, err := store.UserStats(ctx, "user-without-quizzes")
	require.NoError(t, err)
	require.Equal(t, UserStats{}, empty)

	_, err = store.UserStats(ctx, "")
	require.ErrorIs(t, err, ErrUserIDRequired)
}

func TestSQLiteStore_LenientPolicyOnCreate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	quiz := &Quiz{
		ID:        "q1",
		Title:     "t",
		Text:      "body",
		Questions: "garbage{{",
		UserID:    "user-1",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateQuiz(ctx, quiz))

	fetched, err := store.GetQuizByID(ctx, "q1")
	require.NoError(t, err)
	decoded, err := fetched.DecodeQuestions()
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.Contains(t, decoded[0].OriginalSentence, "could not be loaded")
}

func TestSQLiteStore_StrictPolicyOnCreate(t *testing.T) {
	store, err := OpenSQLiteStore(":memory:", StrictQuestions)
	require.NoError(t, err)
	defer store.Close()

	quiz := &Quiz{
		ID:        "q1",
		Title:     "t",
		Text:      "body",
		Questions: "garbage{{",
		UserID:    "user-1",
		CreatedAt: time.Now().UTC(),
	}
	require.Error(t, store.CreateQuiz(context.Background(), quiz))
}
