package mood

import (
	"context"
	"errors"
)

// FaceDetector is the remote face/emotion detection service.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]FaceSignals, error)
}

// Example is one labeled utterance supplied to the few-shot classifier.
type Example struct {
	Text  string
	Label string
}

// TextClassifier is the remote few-shot text classification service.
type TextClassifier interface {
	Classify(ctx context.Context, text string, examples []Example) ([]Classification, error)
}

// DefaultExamples is the stock few-shot set, one utterance per known label.
func DefaultExamples() []Example {
	return []Example{
		{Text: "I'm so happy today!", Label: Joy},
		{Text: "I feel really sad about this.", Label: Sorrow},
		{Text: "This makes me angry!", Label: Anger},
		{Text: "Wow, I didn't expect that!", Label: Surprise},
		{Text: "I'm feeling neutral about this.", Label: Neutral},
	}
}

// ImageDetector turns image bytes into a Descriptor.
type ImageDetector struct {
	faces FaceDetector
}

// NewImageDetector wraps the supplied face detector.
func NewImageDetector(faces FaceDetector) (*ImageDetector, error) {
	if faces == nil {
		return nil, errors.New("face detector is required")
	}
	return &ImageDetector{faces: faces}, nil
}

// DetectImageMood calls the face detector once and normalizes its output.
func (d *ImageDetector) DetectImageMood(ctx context.Context, image []byte) (Descriptor, error) {
	faces, err := d.faces.DetectFaces(ctx, image)
	if err != nil {
		return Descriptor{}, err
	}
	return FromFaces(faces), nil
}

// TextDetector turns free text into a Descriptor using a few-shot classifier.
type TextDetector struct {
	classifier TextClassifier
	examples   []Example
}

// NewTextDetector wraps the classifier. An empty example set selects DefaultExamples.
func NewTextDetector(classifier TextClassifier, examples []Example) (*TextDetector, error) {
	if classifier == nil {
		return nil, errors.New("text classifier is required")
	}
	if len(examples) == 0 {
		examples = DefaultExamples()
	}
	copied := make([]Example, len(examples))
	copy(copied, examples)
	return &TextDetector{classifier: classifier, examples: copied}, nil
}

// Examples returns a copy of the configured few-shot set.
func (d *TextDetector) Examples() []Example {
	out := make([]Example, len(d.examples))
	copy(out, d.examples)
	return out
}

// DetectTextMood calls the classifier once and normalizes the top prediction.
func (d *TextDetector) DetectTextMood(ctx context.Context, text string) (Descriptor, error) {
	results, err := d.classifier.Classify(ctx, text, d.Examples())
	if err != nil {
		return Descriptor{}, err
	}
	return FromClassifications(results), nil
}
