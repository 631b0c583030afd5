package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/cenkalti/backoff/v5"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// maxContextRunes caps the text sent per call; long transcripts are cut.
const maxContextRunes = 24000

// Config configures the LLM backend behind the inference capability.
type Config struct {
	APIBase       string
	APIKey        string
	FallbackKeys  []string
	DefaultModel  string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	MaxTries      uint          // attempts per call, including the first
	RetryInterval time.Duration // initial backoff interval
}

// ConfigFrom maps the engine configuration onto an inference Config.
func ConfigFrom(c engine.Config) Config {
	return Config{
		APIBase:      c.LLMAPIBase,
		APIKey:       c.LLMAPIKey,
		FallbackKeys: c.LLMAPIKeyFallbacks,
		DefaultModel: c.LLMModel,
		Temperature:  c.LLMTemperature,
		MaxTokens:    c.LLMMaxTokens,
	}
}

// completeFunc sends one chat completion to model.
type completeFunc func(ctx context.Context, model, system, prompt string, temperature float64, maxTokens int) (string, error)

// Engine runs inference calls against an OpenAI-compatible LLM backend.
// Clients are created lazily and memoized per model id; results are not cached.
type Engine struct {
	cfg      Config
	complete completeFunc

	mu      sync.Mutex
	clients map[string]*llm.Client
}

// New returns an Engine for cfg.
func New(cfg Config) *Engine {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	e := &Engine{cfg: cfg, clients: make(map[string]*llm.Client)}
	e.complete = e.llmComplete
	return e
}

// Configured reports whether an API key is available.
func (e *Engine) Configured() bool {
	return strings.TrimSpace(e.cfg.APIKey) != ""
}

// DefaultModel returns the model used when a call names none.
func (e *Engine) DefaultModel() string { return e.cfg.DefaultModel }

// Infer runs in against modelID (empty = default model).
func (e *Engine) Infer(ctx context.Context, modelID string, in Input) (Output, error) {
	if in == nil {
		return Output{}, fmt.Errorf("%w: nil input", ErrEmptyInput)
	}
	if err := in.validate(); err != nil {
		return Output{}, err
	}
	model := strings.TrimSpace(modelID)
	if model == "" {
		model = e.cfg.DefaultModel
	}
	if model == "" {
		return Output{}, fmt.Errorf("%w: no model", ErrNotConfigured)
	}

	out := Output{Task: in.Task(), Model: model}
	var system, prompt string
	temperature, maxTokens := e.cfg.Temperature, e.cfg.MaxTokens
	switch v := in.(type) {
	case Sentiment:
		system = sentimentSystem
		prompt = fmt.Sprintf(sentimentPrompt, clip(v.Text))
		temperature, maxTokens = 0, 64
	case Generation:
		system = generationSystem
		prompt = fmt.Sprintf(generationPrompt, clip(v.Prompt))
		temperature = 0.7
		if v.MaxLength > 0 {
			maxTokens = v.MaxLength
		}
	case QuestionAnswering:
		system = qaSystem
		prompt = fmt.Sprintf(qaPrompt, v.Question, clip(v.Context))
		temperature, maxTokens = 0, 256
	default:
		return Output{}, fmt.Errorf("%w: %T", ErrUnknownTask, in)
	}

	raw, err := e.call(ctx, model, system, prompt, temperature, maxTokens)
	if err != nil {
		return Output{}, fmt.Errorf("%s inference with %s: %w", out.Task, model, err)
	}

	switch v := in.(type) {
	case Sentiment:
		label, score, err := parseSentiment(raw)
		if err != nil {
			engine.IncrInferenceErrors()
			return Output{}, err
		}
		out.Label, out.Score = label, score
	case Generation:
		out.GeneratedText = strings.TrimSpace(v.Prompt) + " " + strings.TrimSpace(stripFences(raw))
	case QuestionAnswering:
		out.Answer, out.Score = parseAnswer(raw)
	}
	return out, nil
}

// call sends one completion with exponential backoff. The first call for a model
// may hit a cold backend; later attempts usually succeed.
func (e *Engine) call(ctx context.Context, model, system, prompt string, temperature float64, maxTokens int) (string, error) {
	engine.IncrInferenceCalls()

	b := backoff.NewExponentialBackOff()
	if e.cfg.RetryInterval > 0 {
		b.InitialInterval = e.cfg.RetryInterval
	}
	attempt := 0
	raw, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		out, err := e.complete(ctx, model, system, prompt, temperature, maxTokens)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			slog.Debug("inference: attempt failed", slog.String("model", model), slog.Int("attempt", attempt), slog.Any("error", err))
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", errors.New("empty completion")
		}
		return out, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(e.cfg.MaxTries))
	if err != nil {
		engine.IncrInferenceErrors()
		return "", err
	}
	return raw, nil
}

func (e *Engine) llmComplete(ctx context.Context, model, system, prompt string, temperature float64, maxTokens int) (string, error) {
	if !e.Configured() {
		return "", ErrNotConfigured
	}
	return e.client(model).Complete(ctx, system, prompt,
		llm.WithChatTemperature(temperature),
		llm.WithChatMaxTokens(maxTokens),
	)
}

// client returns the memoized client for model.
func (e *Engine) client(model string) *llm.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.clients[model]; ok {
		return c
	}
	c := llm.NewClient(e.cfg.APIBase, e.cfg.APIKey, model,
		llm.WithFallbackKeys(e.cfg.FallbackKeys),
		llm.WithMaxTokens(e.cfg.MaxTokens),
		llm.WithTemperature(e.cfg.Temperature),
		llm.WithHTTPClient(&http.Client{Timeout: e.cfg.Timeout}),
	)
	e.clients[model] = c
	slog.Info("inference: client ready", slog.String("model", model))
	return c
}

func clip(s string) string {
	return engine.TruncateRunes(strings.TrimSpace(s), maxContextRunes, "")
}
