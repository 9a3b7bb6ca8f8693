package quizforge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestions_AliasResolution(t *testing.T) {
	items := []any{
		map[string]any{
			"question":    "2+2?",
			"answer":      "4",
			"distractors": []any{"3", "5"},
		},
	}

	questions, dropped := NormalizeQuestions(items)
	require.Zero(t, dropped)
	require.Equal(t, []QuizQuestion{{
		OriginalSentence: "4",
		PartialSentence:  "2+2?",
		FalseSentences:   []string{"3", "5"},
	}}, questions)
}

func TestNormalizeQuestions_SynthesizesPartial(t *testing.T) {
	items := []any{
		map[string]any{
			"original_sentence": "The sky is blue.",
			"partial_sentence":  "",
			"false_sentences":   []any{"The sky is green."},
		},
	}

	questions, dropped := NormalizeQuestions(items)
	require.Zero(t, dropped)
	require.Len(t, questions, 1)

	q := questions[0]
	require.Equal(t, "The sky...", q.PartialSentence)
	require.NotEqual(t, q.OriginalSentence, q.PartialSentence)
	require.Equal(t, []string{"The sky is green."}, q.FalseSentences)
}

func TestSynthesizePartial(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"The sky is blue.", "The sky..."},
		{"ab", "a..."},
		{"x", "..."},
	}
	for _, tt := range tests {
		got := synthesizePartial(tt.original)
		require.Equal(t, tt.want, got)
		require.NotEmpty(t, got)
		if len(tt.original) > 1 {
			require.NotEqual(t, tt.original, got)
		}
	}
}

func TestNormalizeQuestions_WhitespaceCleanup(t *testing.T) {
	items := []any{
		map[string]any{
			"sentence": "The  quick\nbrown   fox. ",
			"prompt":   "\tThe quick... ",
		},
	}

	questions, _ := NormalizeQuestions(items)
	require.Len(t, questions, 1)
	require.Equal(t, "The quick brown fox.", questions[0].OriginalSentence)
	require.Equal(t, "The quick...", questions[0].PartialSentence)
}

func TestNormalizeQuestions_FalseSentenceFiltering(t *testing.T) {
	items := []any{
		map[string]any{
			"original_sentence": "Water boils at 100C.",
			"partial_sentence":  "Water boils at...",
			"false_sentences": []any{
				"Water  boils at 100C.", // equals the original after cleanup
				nil,
				"Water boils at 50C.",
				"Water boils at 50C.", // duplicate
				map[string]any{"not": "text"},
				float64(42),
				"",
			},
		},
	}

	questions, _ := NormalizeQuestions(items)
	require.Len(t, questions, 1)
	require.Equal(t, []string{"Water boils at 50C.", "42"}, questions[0].FalseSentences)
}

func TestNormalizeQuestions_DropsUnusableItems(t *testing.T) {
	items := []any{
		"not an object",
		nil,
		map[string]any{"irrelevant": "fields"},
		map[string]any{"sentence": "First valid sentence here."},
		map[string]any{"partial_sentence": "only a prompt"}, // no original
		map[string]any{"sentence": "Second valid sentence here."},
	}

	questions, dropped := NormalizeQuestions(items)
	require.Equal(t, 4, dropped)
	require.Len(t, questions, 2)
	// Input order is preserved for survivors.
	require.Equal(t, "First valid sentence here.", questions[0].OriginalSentence)
	require.Equal(t, "Second valid sentence here.", questions[1].OriginalSentence)
}

func TestNormalizeQuestions_EmptyInput(t *testing.T) {
	questions, dropped := NormalizeQuestions(nil)
	require.Empty(t, questions)
	require.Zero(t, dropped)
}

func TestNormalizeQuestions_SpecificAliasBeatsText(t *testing.T) {
	items := []any{
		map[string]any{
			"text":            "generic text field",
			"correct_answer":  "The specific answer.",
			"question":        "The specific question?",
			"false_sentences": []any{},
		},
	}

	questions, _ := NormalizeQuestions(items)
	require.Len(t, questions, 1)
	require.Equal(t, "The specific answer.", questions[0].OriginalSentence)
	require.Equal(t, "The specific question?", questions[0].PartialSentence)
}

func TestNormalizeQuestions_MissingFalseSentences(t *testing.T) {
	items := []any{map[string]any{"sentence": "A sentence without options."}}

	questions, _ := NormalizeQuestions(items)
	require.Len(t, questions, 1)
	require.Empty(t, questions[0].FalseSentences)
}
