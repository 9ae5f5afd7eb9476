package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestArkClient_Complete(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("Song: Mirrorball", nil)}
	client := NewChatModelClient(fake)

	got, err := client.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Song: Mirrorball" {
		t.Fatalf("expected verbatim content got %q", got)
	}
	if len(fake.input) != 2 {
		t.Fatalf("expected 2 messages got %d", len(fake.input))
	}
	if fake.input[0].Role != schema.System || fake.input[0].Content != "sys" {
		t.Fatalf("system message mismatch: %+v", fake.input[0])
	}
	if fake.input[1].Role != schema.User || fake.input[1].Content != "prompt" {
		t.Fatalf("user message mismatch: %+v", fake.input[1])
	}
}

func TestArkClient_CompleteFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeChatModel
	}{
		{"generate error", &fakeChatModel{err: errors.New("quota exceeded")}},
		{"nil message", &fakeChatModel{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewChatModelClient(tc.fake).Complete(context.Background(), "s", "p"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	var nilClient *ArkClient
	if _, err := nilClient.Complete(context.Background(), "s", "p"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}
