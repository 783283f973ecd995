package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are an expert high-performance coach for Morning Forge.
Build a specific, timed, realistic and action-based morning routine from the user's profile.
Tone: calm, supportive, serious but motivating.
Respect the wake up and leave times and never exceed the maximum duration.
Do not recommend dangerous diets or less than 6 hours of sleep. Keep workouts simple for beginners.
Return ONLY a JSON object with "title", "summary" {"wakeTime","sleepTarget","duration","focus"} and
"blocks" [{"timeRange","title","activities","explanation","icon"}] where icon is one of
wake, move, mind, money, prepare, other.`

var ErrEmptyResponse = errors.New("openai returned no choices")

// RoutineGenerator asks a chat completion model for a routine in JSON mode.
type RoutineGenerator struct {
	client *goopenai.Client
	model  string
	logger *logrus.Logger
}

func NewRoutineGenerator(apiKey, model string, logger *logrus.Logger) *RoutineGenerator {
	return NewRoutineGeneratorWithConfig(goopenai.DefaultConfig(apiKey), model, logger)
}

// NewRoutineGeneratorWithConfig allows a custom base URL or HTTP client.
func NewRoutineGeneratorWithConfig(cfg goopenai.ClientConfig, model string, logger *logrus.Logger) *RoutineGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &RoutineGenerator{client: goopenai.NewClientWithConfig(cfg), model: model, logger: logger}
}

// Generate sends the profile payload and returns the model's JSON object.
func (g *RoutineGenerator) Generate(ctx context.Context, payload []byte) (json.RawMessage, error) {
	req := goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: "Create a morning routine for this user profile:\n" + string(payload)},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{"model": g.model, "finish_reason": resp.Choices[0].FinishReason}).Debug("routine generated")
	}
	text := stripFences(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("openai returned invalid JSON")
	}
	return json.RawMessage(text), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
