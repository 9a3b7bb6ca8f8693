package quizforge

// The generation API does not commit to a response envelope: the question
// array may arrive bare, under "data" next to a success flag, or under one of
// several listing keys. Extraction is an ordered list of shape matchers, each
// a pure function tried in priority order.

// questionArrayKeys are the envelope keys scanned after "data", in priority
// order.
var questionArrayKeys = []string{"questions", "results", "items", "quiz", "statements"}

type shapeMatcher func(data any) ([]any, bool)

var shapeMatchers = []shapeMatcher{
	matchBareArray,
	matchDataEnvelope,
	matchKeyedEnvelope,
}

// ExtractQuestions locates the array of question-like objects inside an
// arbitrary decoded JSON payload. It returns nil when no recognized shape
// holds an array; callers treat nil as a terminal failure for the attempt.
func ExtractQuestions(data any) []any {
	for _, match := range shapeMatchers {
		if arr, ok := match(data); ok {
			return arr
		}
	}
	return nil
}

// matchBareArray accepts a payload that is itself the question array.
func matchBareArray(data any) ([]any, bool) {
	arr, ok := data.([]any)
	return arr, ok
}

// matchDataEnvelope prefers {"data": [...]} regardless of any accompanying
// success flag, and regardless of whether the array is empty.
func matchDataEnvelope(data any) ([]any, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj["data"].([]any)
	return arr, ok
}

// matchKeyedEnvelope scans the remaining recognized keys in fixed priority
// order. The first non-empty array wins; when only empty arrays are present
// the first of those is returned, so a found-but-empty key yields [] rather
// than nil.
func matchKeyedEnvelope(data any) ([]any, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	var empty []any
	found := false
	for _, key := range questionArrayKeys {
		arr, ok := obj[key].([]any)
		if !ok {
			continue
		}
		if len(arr) > 0 {
			return arr, true
		}
		if !found {
			empty = arr
			found = true
		}
	}
	return empty, found
}
