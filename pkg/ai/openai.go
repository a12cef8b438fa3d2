package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	assistantDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "assistant",
		Name:      "request_duration_seconds",
		Help:      "Duration of assistant requests",
	}, []string{"operation", "model"})

	assistantFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "assistant",
		Name:      "request_failures_total",
		Help:      "Number of failed assistant requests",
	}, []string{"operation", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI assistant.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAssistant implements Assistant against the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a new assistant using the provided configuration.
func NewOpenAIAssistant(cfg OpenAIConfig) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-learn-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_assistant").Logger(),
	}, nil
}

// GenerateOutline asks the model for a module/lesson outline of the topic.
func (a *OpenAIAssistant) GenerateOutline(ctx context.Context, topic string) (Outline, error) {
	var outline Outline
	if err := a.complete(ctx, "outline", outlineSystemPrompt(), outlineUserPrompt(topic), func(content string) error {
		return decodeValidated(outlineValidator, content, &outline)
	}); err != nil {
		return Outline{}, err
	}

	for i := range outline.Modules {
		outline.Modules[i].ModuleTitle = strings.TrimSpace(outline.Modules[i].ModuleTitle)
		for j := range outline.Modules[i].Lessons {
			lesson := &outline.Modules[i].Lessons[j]
			lesson.Title = strings.TrimSpace(lesson.Title)
			lesson.Summary = strings.TrimSpace(lesson.Summary)
		}
	}

	return outline, nil
}

// SearchHelp asks the model to answer a help-center question.
func (a *OpenAIAssistant) SearchHelp(ctx context.Context, query string) (HelpAnswer, error) {
	var answer HelpAnswer
	if err := a.complete(ctx, "help_search", helpSystemPrompt(), strings.TrimSpace(query), func(content string) error {
		return decodeValidated(helpValidator, content, &answer)
	}); err != nil {
		return HelpAnswer{}, err
	}

	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	answer.Answer = strings.TrimSpace(answer.Answer)
	return answer, nil
}

func (a *OpenAIAssistant) complete(parent context.Context, operation, system, user string, decode func(string) error) error {
	ctx, span := a.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	fail := func(err error) error {
		assistantFailures.WithLabelValues(operation, a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warn().Err(err).Str("operation", operation).Msg("assistant request failed")
		return err
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	assistantDuration.WithLabelValues(operation, a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(fmt.Errorf("openai %s: %w", operation, err))
	}

	if len(resp.Choices) == 0 {
		return fail(fmt.Errorf("%w: no choices returned", ErrInvalidResponse))
	}

	if err := decode(resp.Choices[0].Message.Content); err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("usage.total_tokens", resp.Usage.TotalTokens))
	return nil
}

func outlineSystemPrompt() string {
	return "You are a curriculum designer. Respond with a JSON object {\"modules\": [{\"module_title\": string, " +
		"\"lessons\": [{\"title\": string, \"summary\": string}]}]}. Each summary is exactly one sentence."
}

func outlineUserPrompt(topic string) string {
	builder := strings.Builder{}
	builder.WriteString("Draft a course outline with 3 to 6 modules for the topic below.\n\n## Topic\n")
	builder.WriteString(strings.TrimSpace(topic))
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func helpSystemPrompt() string {
	return "You answer questions from learners and instructors of an online learning platform. Respond with a JSON " +
		"object {\"answer\": string, \"sources\": [string]} where sources lists the URLs or document titles you relied on."
}
