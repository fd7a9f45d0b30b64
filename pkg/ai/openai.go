package ai

import (
	"context"
	"encoding/json"
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
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quibly",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of language model requests",
	}, []string{"model", "mode"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quibly",
		Subsystem: "ai",
		Name:      "failures_total",
		Help:      "Number of failed language model requests",
	}, []string{"model", "mode"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Client against the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	tracer := otel.Tracer("github.com/ashleeec/quibly/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Complete sends the system instruction plus full conversation history
// and returns the model's reply verbatim.
func (c *OpenAIClient) Complete(parent context.Context, system string, history []Message) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("history_len", len(history)),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	content, err := c.createCompletion(ctx, span, "chat", openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}

	return content, nil
}

// CompleteJSON sends a single structured payload in the model's JSON
// mode and validates the response against the declared schema.
func (c *OpenAIClient) CompleteJSON(parent context.Context, system string, user string, schema *Schema) (json.RawMessage, error) {
	attrs := []attribute.KeyValue{attribute.String("model", c.cfg.Model)}
	if schema != nil {
		attrs = append(attrs, attribute.String("schema", schema.Name))
	}

	ctx, span := c.tracer.Start(parent, "openai.complete_json", trace.WithAttributes(attrs...))
	defer span.End()

	content, err := c.createCompletion(ctx, span, "json", openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(content)
	if err := validateAgainstSchema(schema, raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		aiFailures.WithLabelValues(c.cfg.Model, "json").Inc()
		return nil, err
	}

	return raw, nil
}

func (c *OpenAIClient) createCompletion(ctx context.Context, span trace.Span, mode string, request openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, mode).Observe(time.Since(start).Seconds())

	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, mode).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", &ExternalServiceError{Err: err}
	}

	if len(resp.Choices) == 0 {
		wrapped := &ExternalServiceError{Err: fmt.Errorf("no choices returned")}
		aiFailures.WithLabelValues(c.cfg.Model, mode).Inc()
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return "", wrapped
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		wrapped := &ExternalServiceError{Err: fmt.Errorf("empty completion content")}
		aiFailures.WithLabelValues(c.cfg.Model, mode).Inc()
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return "", wrapped
	}

	c.logger.Debug().Str("mode", mode).Int("prompt_tokens", resp.Usage.PromptTokens).Int("completion_tokens", resp.Usage.CompletionTokens).Msg("completion finished")

	return content, nil
}
