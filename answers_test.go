package quizforge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuestionView_Unshuffled(t *testing.T) {
	q := QuizQuestion{
		OriginalSentence: "The sky is blue.",
		PartialSentence:  "The sky is...",
		FalseSentences:   []string{"The sky is green.", "The sky is red."},
	}

	view := BuildQuestionView(q, false)
	require.Equal(t, "The sky is...", view.Prompt)
	require.Len(t, view.Choices, 3)
	require.Equal(t, 0, view.CorrectIndex)
	require.Equal(t, Choice{Letter: "A", Text: "The sky is blue."}, view.Choices[0])
	require.Equal(t, Choice{Letter: "B", Text: "The sky is green."}, view.Choices[1])
	require.Equal(t, Choice{Letter: "C", Text: "The sky is red."}, view.Choices[2])
}

func TestBuildQuestionView_ShuffleKeepsCorrectIndex(t *testing.T) {
	q := QuizQuestion{
		OriginalSentence: "The sky is blue.",
		PartialSentence:  "The sky is...",
		FalseSentences:   []string{"a", "b", "c", "d"},
	}

	for i := 0; i < 20; i++ {
		view := BuildQuestionView(q, true)
		require.Len(t, view.Choices, 5)
		require.GreaterOrEqual(t, view.CorrectIndex, 0)
		require.Equal(t, q.OriginalSentence, view.Choices[view.CorrectIndex].Text)
	}
}

func TestBuildQuestionView_NoDistractors(t *testing.T) {
	q := QuizQuestion{OriginalSentence: "Only truth.", PartialSentence: "Only..."}

	view := BuildQuestionView(q, false)
	require.Len(t, view.Choices, 1)
	require.Equal(t, 0, view.CorrectIndex)
}

func TestEvaluateAnswers(t *testing.T) {
	questions := []QuizQuestion{
		{OriginalSentence: "The sky is blue.", PartialSentence: "The sky is..."},
		{OriginalSentence: "Water boils at 100C.", PartialSentence: "Water boils at..."},
		{OriginalSentence: "Grass is green.", PartialSentence: "Grass is..."},
	}

	report := EvaluateAnswers(questions, []string{
		"The sky is blue.",
		"Water boils at 50C.",
	})
	require.Equal(t, 3, report.Total)
	require.Equal(t, 1, report.Correct)
	require.Equal(t, []bool{true, false, false}, report.Results)
}

func TestEvaluateAnswers_ForgivesWhitespace(t *testing.T) {
	questions := []QuizQuestion{{OriginalSentence: "The sky is blue.", PartialSentence: "p"}}

	report := EvaluateAnswers(questions, []string{"  The  sky is\tblue.  "})
	require.Equal(t, 1, report.Correct)
}

func TestEvaluateAnswers_Empty(t *testing.T) {
	report := EvaluateAnswers(nil, nil)
	require.Zero(t, report.Total)
	require.Zero(t, report.Correct)
	require.Empty(t, report.Results)
}
