// Package openai implements ports.Dialogue over any OpenAI-compatible chat
// completion endpoint.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// DefaultPersona seeds every new conversation.
const DefaultPersona = "You are an expert in smart contract programming."

// Sampling bounds used when randomization is requested.
const (
	MinTemperature = 0.6
	MaxTemperature = 1.0
	MinTopP        = 0.9
	MaxTopP        = 1.0
)

// Config holds the endpoint and default sampling parameters.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	TopP        float32

	// RequestsPerSecond paces calls across all sessions. Zero disables pacing.
	RequestsPerSecond float64

	// Timeout bounds a single completion request. Zero means no bound.
	Timeout time.Duration
}

// Dialogue implements ports.Dialogue.
type Dialogue struct {
	client  *openai.Client
	cfg     Config
	persona string
	limiter *rate.Limiter
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.Dialogue = (*Dialogue)(nil)

// Option configures the Dialogue.
type Option func(*Dialogue)

// WithPersona replaces the system prompt of new conversations.
func WithPersona(p string) Option {
	return func(d *Dialogue) {
		d.persona = p
	}
}

// WithLogger configures a logger for the Dialogue.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dialogue) {
		d.logger = logger
	}
}

// WithRand sets the random source used for sampling parameters.
func WithRand(r *rand.Rand) Option {
	return func(d *Dialogue) {
		d.rng = r
	}
}

// New creates a Dialogue for cfg.
func New(cfg Config, opts ...Option) *Dialogue {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = MinTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = MinTopP
	}

	d := &Dialogue{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     cfg,
		persona: DefaultPersona,
		logger:  logging.NewNop(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	if cfg.RequestsPerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Model returns the configured model name.
func (d *Dialogue) Model() string {
	return d.cfg.Model
}

// Chat sends prompt as the next user turn of history.
func (d *Dialogue) Chat(ctx context.Context, prompt string, history []domain.Message, randomize bool) (string, []domain.Message, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", history, err
		}
	}

	next := make([]domain.Message, 0, len(history)+3)
	if len(history) == 0 {
		next = append(next, domain.Message{Role: domain.RoleSystem, Content: d.persona})
	}
	next = append(next, history...)
	next = append(next, domain.Message{Role: domain.RoleUser, Content: prompt})

	temperature, topP := d.cfg.Temperature, d.cfg.TopP
	if randomize {
		temperature, topP = d.sample()
	}

	req := openai.ChatCompletionRequest{
		Model:       d.cfg.Model,
		Messages:    toOpenAI(next),
		Temperature: temperature,
		TopP:        topP,
	}

	d.logger.Debug("chat completion", "model", d.cfg.Model, "turns", len(next), "temperature", temperature, "top_p", topP)
	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", history, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", history, domain.ErrEmptyResponse
	}

	reply := resp.Choices[0].Message.Content
	next = append(next, domain.Message{Role: domain.RoleAssistant, Content: reply})
	return reply, next, nil
}

// sample draws temperature and top_p uniformly within their bounds, rounded to two decimals.
func (d *Dialogue) sample() (float32, float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := round2(MinTemperature + d.rng.Float64()*(MaxTemperature-MinTemperature))
	p := round2(MinTopP + d.rng.Float64()*(MaxTopP-MinTopP))
	return float32(t), float32(p)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toOpenAI(msgs []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
