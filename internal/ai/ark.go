package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ArkConfig configures the Volcengine Ark chat model.
type ArkConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ArkClient implements ChatCompleter on top of an eino chat model.
type ArkClient struct {
	model model.BaseChatModel
}

// NewArkClient builds an Ark-backed chat model.
func NewArkClient(ctx context.Context, cfg ArkConfig) (*ArkClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrDisabled
	}
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: strings.TrimSpace(cfg.BaseURL),
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Model:   strings.TrimSpace(cfg.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("ark chat model: %w", err)
	}
	return NewChatModelClient(cm), nil
}

// NewChatModelClient adapts any eino chat model.
func NewChatModelClient(m model.BaseChatModel) *ArkClient {
	return &ArkClient{model: m}
}

// Complete generates one reply and returns its content verbatim.
func (c *ArkClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrDisabled
	}
	msg, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("ark generate: %w", err)
	}
	if msg == nil {
		return "", errors.New("ark empty response")
	}
	return msg.Content, nil
}
