package quizforge

import (
	"strconv"
	"strings"
)

// Alias tables mapping upstream field-name variants onto the canonical
// QuizQuestion fields. Probed in order; first hit of the right type wins.
// "text" is deliberately last in both sentence lists so the more specific
// names take precedence.
var (
	originalSentenceAliases = []string{
		"original_sentence", "fullSentence", "sentence", "answer",
		"correctAnswer", "correct_answer", "right_answer", "text",
	}
	partialSentenceAliases = []string{
		"partial_sentence", "partialSentence", "question", "prompt", "stem", "text",
	}
	falseSentenceAliases = []string{
		"false_sentences", "falseSentences", "falseStatements", "options",
		"choices", "incorrect_answers", "wrongAnswers", "distractors",
	}
)

// NormalizeQuestions coerces extracted question-like items into canonical
// QuizQuestion records. Items that are not objects, or that end up without
// both sentences after cleaning, are dropped silently; the drop count is
// returned for diagnostics. Input order is preserved for survivors.
func NormalizeQuestions(items []any) ([]QuizQuestion, int) {
	questions := make([]QuizQuestion, 0, len(items))
	dropped := 0

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || obj == nil {
			dropped++
			continue
		}

		original := cleanText(firstStringField(obj, originalSentenceAliases))
		partial := cleanText(firstStringField(obj, partialSentenceAliases))

		// Lossy fallback by policy: a missing prompt is synthesized from the
		// first half of the full sentence.
		if partial == "" && original != "" {
			partial = synthesizePartial(original)
		}

		if original == "" || partial == "" {
			dropped++
			continue
		}

		questions = append(questions, QuizQuestion{
			OriginalSentence: original,
			PartialSentence:  partial,
			FalseSentences:   normalizeFalseSentences(firstArrayField(obj, falseSentenceAliases), original),
		})
	}

	return questions, dropped
}

// firstStringField probes aliases in order and returns the first string-typed
// value found.
func firstStringField(obj map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if s, ok := obj[alias].(string); ok {
			return s
		}
	}
	return ""
}

// firstArrayField probes aliases in order and returns the first array-typed
// value found.
func firstArrayField(obj map[string]any, aliases []string) []any {
	for _, alias := range aliases {
		if arr, ok := obj[alias].([]any); ok {
			return arr
		}
	}
	return nil
}

// normalizeFalseSentences cleans distractors and drops entries that are not
// text, duplicate one another, or match the correct sentence. The last rule
// keeps the answer from leaking into the distractor set.
func normalizeFalseSentences(raw []any, original string) []string {
	sentences := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, entry := range raw {
		text, ok := textValue(entry)
		if !ok {
			continue
		}
		text = cleanText(text)
		if text == "" || text == original || seen[text] {
			continue
		}
		seen[text] = true
		sentences = append(sentences, text)
	}
	return sentences
}

// textValue coerces a distractor entry to text. Strings pass through, JSON
// numbers are formatted, everything else (null, nested objects) is dropped.
func textValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// cleanText collapses newlines and runs of whitespace into single spaces and
// trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// synthesizePartial truncates a sentence to its first half (rune count / 2,
// floor) and appends an ellipsis marker.
func synthesizePartial(original string) string {
	runes := []rune(original)
	half := string(runes[:len(runes)/2])
	return strings.TrimRight(half, " ") + "..."
}
