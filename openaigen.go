package quizforge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIGenerator produces statement material with a chat completion instead
// of the remote generation API. The forced tool call keeps the output machine
// readable; field names match the normalizer's alias tables so the payload
// flows through the same pipeline as any other backend.
type OpenAIGenerator struct {
	client *openai.Client
	log    *zap.SugaredLogger
	rec    *DebugRecorder
}

func NewOpenAIGenerator(apiKey string, log *zap.SugaredLogger, rec *DebugRecorder) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		log:    log,
		rec:    rec,
	}
}

func (g *OpenAIGenerator) GenerateRaw(ctx context.Context, req GenerationRequest) (any, error) {
	prompt := g.buildPrompt(req)
	if g.rec != nil {
		g.rec.RecordRequest("openai", prompt)
	}

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert at building sentence-completion quizzes. Given a text, pick factual sentences and invent plausible but false variants of each.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_statements",
						Description: "Submit the generated quiz statements",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"statements": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"original_sentence": map[string]interface{}{
												"type":        "string",
												"description": "The full true sentence taken from the text",
											},
											"partial_sentence": map[string]interface{}{
												"type":        "string",
												"description": "The first half of the sentence, used as the prompt",
											},
											"false_sentences": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "string",
												},
												"description": "False completions of the partial sentence",
											},
										},
										"required": []string{"original_sentence", "false_sentences"},
									},
								},
							},
							"required": []string{"statements"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_statements",
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate statements: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_statements" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	if g.rec != nil {
		g.rec.RecordResponse("openai", json.RawMessage(toolCall.Function.Arguments))
	}

	var payload any
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return payload, nil
}

func (g *OpenAIGenerator) buildPrompt(req GenerationRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Build quiz statements from the following text. For each of up to %d sentences:\n\n", req.NumStatements)
	sb.WriteString("- original_sentence: a complete factual sentence from the text\n")
	sb.WriteString("- partial_sentence: roughly the first half of that sentence\n")
	sb.WriteString("- false_sentences: 2-3 completions that are plausible but contradict the text\n\n")
	sb.WriteString("False completions must never equal the original sentence.\n")
	sb.WriteString("Use the submit_statements tool to return your statements.\n\n")
	sb.WriteString("Text:\n")
	sb.WriteString(req.Text)

	return sb.String()
}
