package translator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ormasoftchile/tact/pkg/plan"
)

// Options configure the model behind the translator.
type Options struct {
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
}

// LLMTranslator implements Client on top of any langchaingo model.
type LLMTranslator struct {
	model       llms.Model
	name        string
	temperature float64
}

// NewOpenAI builds a translator against an OpenAI-compatible endpoint.
func NewOpenAI(opts Options) (*LLMTranslator, error) {
	llmOpts := []openai.Option{openai.WithModel(opts.Model)}
	if opts.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		llmOpts = append(llmOpts, openai.WithToken(opts.APIKey))
	}
	model, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("init translator model: %w", err)
	}
	return NewWithModel(model, opts.Model, opts.Temperature), nil
}

// NewWithModel wraps an already-constructed langchaingo model.
func NewWithModel(model llms.Model, name string, temperature float64) *LLMTranslator {
	if temperature == 0 {
		temperature = 0.2
	}
	return &LLMTranslator{model: model, name: name, temperature: temperature}
}

func (t *LLMTranslator) ModelName() string { return t.name }

// Translate implements Client.
func (t *LLMTranslator) Translate(ctx context.Context, instruction string) (*plan.Plan, error) {
	user, err := TranslateUserPrompt(instruction)
	if err != nil {
		return nil, err
	}
	return t.run(ctx, instruction, user)
}

// Repair implements Client.
func (t *LLMTranslator) Repair(ctx context.Context, instruction, report string) (*plan.Plan, error) {
	user, err := RepairUserPrompt(instruction, report)
	if err != nil {
		return nil, err
	}
	p, err := t.run(ctx, instruction, user)
	if err != nil {
		return nil, err
	}
	p.Healed = true
	return p, nil
}

func (t *LLMTranslator) run(ctx context.Context, instruction, userPrompt string) (*plan.Plan, error) {
	system, err := SystemPrompt()
	if err != nil {
		return nil, err
	}
	raw, err := t.complete(ctx, system, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("translator completion: %w", err)
	}
	reply, err := ExtractReply(raw)
	if err != nil {
		return nil, err
	}
	p := plan.FromReply(instruction, reply)
	if len(p.Steps) == 0 {
		return nil, ErrNoCommands
	}
	return p, nil
}

func (t *LLMTranslator) complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := t.model.GenerateContent(ctx, messages, llms.WithTemperature(t.temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
