package quizforge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeQuestions_TypedSlice(t *testing.T) {
	questions := []QuizQuestion{{
		OriginalSentence: "The sky is blue.",
		PartialSentence:  "The sky is...",
		FalseSentences:   []string{"The sky is green."},
	}}

	encoded, err := EncodeQuestions(questions, StrictQuestions)
	require.NoError(t, err)

	var decoded []QuizQuestion
	require.NoError(t, json.Unmarshal([]byte(encoded), &decoded))
	require.Equal(t, questions, decoded)
}

func TestEncodeQuestions_ValidStringPassesThrough(t *testing.T) {
	payload := `[{"original_sentence":"a","partial_sentence":"b","false_sentences":[]}]`

	encoded, err := EncodeQuestions(payload, StrictQuestions)
	require.NoError(t, err)
	require.Equal(t, payload, encoded)
}

func TestEncodeQuestions_LenientReplacesMalformed(t *testing.T) {
	encoded, err := EncodeQuestions("this is not json", LenientQuestions)
	require.NoError(t, err)

	var decoded []QuizQuestion
	require.NoError(t, json.Unmarshal([]byte(encoded), &decoded))
	require.Len(t, decoded, 1)
	require.Contains(t, decoded[0].OriginalSentence, "could not be loaded")
}

func TestEncodeQuestions_StrictRejectsMalformed(t *testing.T) {
	_, err := EncodeQuestions("this is not json", StrictQuestions)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not valid JSON")
}

func TestEncodeQuestions_UnsupportedType(t *testing.T) {
	_, err := EncodeQuestions(42, LenientQuestions)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported questions type")
}

func TestParseQuestionsPolicy(t *testing.T) {
	require.Equal(t, StrictQuestions, ParseQuestionsPolicy("strict"))
	require.Equal(t, LenientQuestions, ParseQuestionsPolicy("lenient"))
	require.Equal(t, LenientQuestions, ParseQuestionsPolicy(""))
}

func TestNormalizeListOptions(t *testing.T) {
	opts := normalizeListOptions(ListOptions{})
	require.Equal(t, defaultListLimit, opts.Limit)
	require.Zero(t, opts.Offset)

	opts = normalizeListOptions(ListOptions{Offset: -5, Limit: 10})
	require.Equal(t, 10, opts.Limit)
	require.Zero(t, opts.Offset)
}
