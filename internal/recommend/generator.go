package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moodsong/backend/internal/ai"
	"moodsong/backend/internal/mood"
)

// DefaultArtist is the catalogue the generator recommends from unless configured otherwise.
const DefaultArtist = "Taylor Swift"

// Result is the combined payload returned to callers.
type Result struct {
	Recommendation string          `json:"recommendation"`
	MoodAnalysis   mood.Descriptor `json:"mood_analysis"`
}

// Generator turns a mood descriptor into a song recommendation.
type Generator struct {
	chat   ai.ChatCompleter
	artist string
}

// NewGenerator wraps the chat provider. An empty artist selects DefaultArtist.
func NewGenerator(chat ai.ChatCompleter, artist string) (*Generator, error) {
	if chat == nil {
		return nil, errors.New("chat completer is required")
	}
	artist = strings.TrimSpace(artist)
	if artist == "" {
		artist = DefaultArtist
	}
	return &Generator{chat: chat, artist: artist}, nil
}

// Recommend asks the model for one song matching d and echoes d back unchanged.
// The model's text is returned as-is.
func (g *Generator) Recommend(ctx context.Context, d mood.Descriptor) (Result, error) {
	content, err := g.chat.Complete(ctx, g.SystemPrompt(), g.Prompt(d))
	if err != nil {
		return Result{}, err
	}
	return Result{Recommendation: content, MoodAnalysis: d}, nil
}

// SystemPrompt frames the assistant as an expert on the configured artist.
func (g *Generator) SystemPrompt() string {
	return fmt.Sprintf("You are a %s expert who recommends songs based on emotions.", g.artist)
}

// Prompt renders the user message for d.
func (g *Generator) Prompt(d mood.Descriptor) string {
	builder := &strings.Builder{}
	builder.WriteString("Based on the following mood analysis:\n")
	fmt.Fprintf(builder, "Emotions: %s\n", strings.Join(d.Emotions, ", "))
	fmt.Fprintf(builder, "Dominant Emotion: %s\n", d.DominantEmotion)
	fmt.Fprintf(builder, "Confidence: %.2f\n", d.Confidence)
	builder.WriteString("\n")
	fmt.Fprintf(builder, "Recommend a %s song that matches this mood. Include:\n", g.artist)
	builder.WriteString("1. Song title\n")
	builder.WriteString("2. Album\n")
	builder.WriteString("3. Brief explanation of why it matches the mood\n")
	builder.WriteString("4. A specific lyric that resonates with this emotion\n")
	return builder.String()
}
