package ai

import (
	"context"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// NewCompleter builds the chat provider selected by name. An empty name selects OpenAI.
func NewCompleter(ctx context.Context, provider string, openai Config, arkCfg ArkConfig) (ChatCompleter, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		client, err := NewClient(openai)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderArk:
		client, err := NewArkClient(ctx, arkCfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}
