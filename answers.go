package quizforge

import "math/rand"

// Choice is a lettered answer option presented to the player.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// QuestionView is a QuizQuestion prepared for display: the partial sentence
// as the prompt and the true completion mixed in with the distractors.
type QuestionView struct {
	Prompt       string   `json:"prompt"`
	Choices      []Choice `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
}

// BuildQuestionView merges the original sentence with its distractors into
// lettered choices. With shuffle off the correct answer is always first,
// which tests rely on.
func BuildQuestionView(q QuizQuestion, shuffle bool) QuestionView {
	texts := make([]string, 0, len(q.FalseSentences)+1)
	texts = append(texts, q.OriginalSentence)
	texts = append(texts, q.FalseSentences...)

	if shuffle {
		rand.Shuffle(len(texts), func(i, j int) {
			texts[i], texts[j] = texts[j], texts[i]
		})
	}

	view := QuestionView{Prompt: q.PartialSentence, CorrectIndex: -1}
	for idx, text := range texts {
		view.Choices = append(view.Choices, Choice{
			Letter: string(rune('A' + idx)),
			Text:   text,
		})
		if text == q.OriginalSentence && view.CorrectIndex < 0 {
			view.CorrectIndex = idx
		}
	}
	return view
}

// BuildQuestionViews prepares a whole quiz for display.
func BuildQuestionViews(questions []QuizQuestion, shuffle bool) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, BuildQuestionView(q, shuffle))
	}
	return views
}

// AnswerReport scores one submission against a quiz.
type AnswerReport struct {
	Total   int    `json:"total"`
	Correct int    `json:"correct"`
	Results []bool `json:"results"`
}

// EvaluateAnswers checks the submitted completion texts against the original
// sentences, position by position. Missing answers count as wrong. Whitespace
// differences are forgiven the same way the normalizer forgives them.
func EvaluateAnswers(questions []QuizQuestion, answers []string) AnswerReport {
	report := AnswerReport{
		Total:   len(questions),
		Results: make([]bool, len(questions)),
	}
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if cleanText(answers[i]) == q.OriginalSentence {
			report.Results[i] = true
			report.Correct++
		}
	}
	return report
}
