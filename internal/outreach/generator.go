// Package outreach drafts client outreach copy (email + call points) for an
// action through a chat-completion deployment.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/wonny/billflow/backend/pkg/config"
	"github.com/wonny/billflow/backend/pkg/logger"
	"github.com/wonny/billflow/backend/pkg/money"
)

const (
	Temperature = 0.7
	MaxTokens   = 500
)

// ErrDisabled OPENAI_API_KEY 미설정
var ErrDisabled = errors.New("outreach generation is not configured")

// ErrEmptyCompletion 응답에 choice가 없을 때
var ErrEmptyCompletion = errors.New("empty completion")

// Request carries what the prompt needs about one action
type Request struct {
	ClientName string
	ClientTier string
	ACV        float64
	ActionType string
	Objective  string
	Context    string
}

// Generator drafts outreach copy
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Prompt renders the user message sent to the model
func Prompt(req Request) string {
	tier := req.ClientTier
	if tier == "" {
		tier = "Unknown"
	}

	var b strings.Builder
	b.WriteString("Generate a professional outreach script for the following situation:\n\n")
	fmt.Fprintf(&b, "Client: %s\n", req.ClientName)
	fmt.Fprintf(&b, "Client Tier: %s\n", tier)
	fmt.Fprintf(&b, "Current ACV: %s\n", money.Dollars(req.ACV, 0))
	fmt.Fprintf(&b, "Action Type: %s\n", req.ActionType)
	fmt.Fprintf(&b, "Objective: %s\n", req.Objective)
	fmt.Fprintf(&b, "Context: %s\n\n", req.Context)
	b.WriteString("Requirements:\n")
	b.WriteString("1. Professional but personable tone\n")
	b.WriteString("2. Lead with value, not ask\n")
	b.WriteString("3. Be concise (under 150 words for email, 5 key points for call)\n")
	b.WriteString("4. Include specific next step\n\n")
	b.WriteString("Generate both an email template and call talking points.")
	return b.String()
}

// =============================================================================
// OpenAI / Azure OpenAI
// =============================================================================

// OpenAIGenerator calls a chat-completion deployment.
// 클라이언트 측 throttle(rate.Limiter)로 분당 호출 수 제한
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIGenerator builds a generator; Azure deployments map every model to cfg.Deployment
func NewOpenAIGenerator(cfg config.OpenAIConfig, log *logger.Logger) (*OpenAIGenerator, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if log == nil {
		log = logger.Nop()
	}

	var clientCfg openai.ClientConfig
	if cfg.Azure {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Deployment
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	}

	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 20
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Deployment,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		timeout: cfg.Timeout,
		log:     log.Component("outreach"),
	}, nil
}

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("outreach throttle: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(req)},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		g.log.WithError(err).WithField("client", req.ClientName).Warn("Outreach generation failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	g.log.WithFields(map[string]interface{}{
		"client":     req.ClientName,
		"tokens":     resp.Usage.TotalTokens,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Outreach generated")
	return resp.Choices[0].Message.Content, nil
}

// Disabled is used when no API key is configured
type Disabled struct{}

// Generate always fails with ErrDisabled
func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrDisabled
}

// New returns an OpenAI generator when configured, otherwise Disabled
func New(cfg config.OpenAIConfig, log *logger.Logger) Generator {
	g, err := NewOpenAIGenerator(cfg, log)
	if err != nil {
		return Disabled{}
	}
	return g
}
