// Package openai implements ports.Phraser with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/ports"
)

// DefaultModel is used when neither WithModel nor OPENAI_MODEL is set.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are a concise, context-aware form assistant.

STRICT GUIDELINES (follow every time):
1. Stay within the exact context provided by the user input and the optional "Context" string.
2. NEVER introduce new topics, questions, or information that are not present in the original text.
3. If asked to include the original question verbatim, include it EXACTLY as written.
4. Keep the tone friendly and conversational, within 1-2 short sentences maximum.
5. Respond only with the text the user expects, without explanations or commentary.`

const transitionContext = `Form: %q
Previous question: %q
Previous answer: %q
Current question: %q

Instructions:
1. Create a VERY brief transition (1-2 words or a short phrase)
2. The transition should acknowledge their previous answer naturally
3. MUST be followed by the EXACT original question
4. DO NOT rephrase or modify the original question
5. DO NOT add explanations or options

Good examples:
- "Great! %[4]s"
- "Thanks! %[4]s"
- "Got it. %[4]s"`

// ErrNoChoices is returned when the API answers without any completion.
var ErrNoChoices = errors.New("openai returned no choices")

// Phraser asks a chat model for a short lead-in before each question.
type Phraser struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// Option configures a Phraser.
type Option func(*Phraser)

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(p *Phraser) {
		if model != "" {
			p.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Phraser) {
		p.logger = logger
	}
}

// New creates a Phraser for the given API key.
func New(apiKey string, opts ...Option) *Phraser {
	return NewFromConfig(openai.DefaultConfig(apiKey), opts...)
}

// NewFromConfig creates a Phraser with a custom client config (base URL, HTTP client).
func NewFromConfig(cfg openai.ClientConfig, opts ...Option) *Phraser {
	p := &Phraser{
		client:      openai.NewClientWithConfig(cfg),
		model:       DefaultModel,
		temperature: 0.2,
		maxTokens:   60,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromEnv reads OPENAI_API_KEY and OPENAI_MODEL.
func NewFromEnv(opts ...Option) (*Phraser, error) {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	opts = append([]Option{WithModel(os.Getenv("OPENAI_MODEL"))}, opts...)
	return New(key, opts...), nil
}

// Model returns the configured model name.
func (p *Phraser) Model() string { return p.model }

// Phrase implements ports.Phraser.
func (p *Phraser) Phrase(ctx context.Context, req ports.PhraseRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	p.logger.Debug("transition phrased", "model", p.model, "finish_reason", resp.Choices[0].FinishReason)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func userPrompt(req ports.PhraseRequest) string {
	return fmt.Sprintf("Please rephrase this in a natural, conversational way while maintaining its core meaning: %q\nContext: %s",
		"Create a brief transition to: "+req.Question,
		fmt.Sprintf(transitionContext, req.FormName, req.PreviousQuestion, req.PreviousAnswer, req.Question),
	)
}

var _ ports.Phraser = (*Phraser)(nil)
