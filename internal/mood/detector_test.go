package mood

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeFaceDetector struct {
	faces []FaceSignals
	err   error
	calls int
	image []byte
}

func (f *fakeFaceDetector) DetectFaces(ctx context.Context, image []byte) ([]FaceSignals, error) {
	f.calls++
	f.image = image
	return f.faces, f.err
}

type fakeClassifier struct {
	results  []Classification
	err      error
	calls    int
	text     string
	examples []Example
}

func (f *fakeClassifier) Classify(ctx context.Context, text string, examples []Example) ([]Classification, error) {
	f.calls++
	f.text = text
	f.examples = examples
	return f.results, f.err
}

func TestImageDetector(t *testing.T) {
	tests := []struct {
		name     string
		detector fakeFaceDetector
		want     Descriptor
		wantErr  bool
	}{
		{"no face", fakeFaceDetector{}, NeutralDescriptor(), false},
		{
			"joy face",
			fakeFaceDetector{faces: []FaceSignals{{Joy: VeryLikely, Sorrow: Possible, Anger: Unlikely}}},
			Descriptor{Emotions: []string{Joy, Sorrow}, Confidence: 1.0, DominantEmotion: Joy},
			false,
		},
		{"remote failure", fakeFaceDetector{err: errors.New("vision down")}, Descriptor{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := tc.detector
			d, err := NewImageDetector(&fake)
			if err != nil {
				t.Fatalf("new detector: %v", err)
			}
			got, err := d.DetectImageMood(context.Background(), []byte("img"))
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected err=%v got %v", tc.wantErr, err)
			}
			if fake.calls != 1 {
				t.Fatalf("expected exactly one remote call got %d", fake.calls)
			}
			if string(fake.image) != "img" {
				t.Fatalf("expected raw bytes forwarded got %q", fake.image)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestTextDetector(t *testing.T) {
	fake := &fakeClassifier{results: []Classification{{Label: "sorrow", Confidence: 0.81}}}
	d, err := NewTextDetector(fake, nil)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	got, err := d.DetectTextMood(context.Background(), "rainy days")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := Descriptor{Emotions: []string{"sorrow"}, Confidence: 0.81, DominantEmotion: "sorrow"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v got %+v", want, got)
	}
	if fake.text != "rainy days" {
		t.Fatalf("expected input forwarded got %q", fake.text)
	}
	if !reflect.DeepEqual(fake.examples, DefaultExamples()) {
		t.Fatalf("expected default examples got %+v", fake.examples)
	}
}

func TestTextDetectorEmptyClassification(t *testing.T) {
	d, err := NewTextDetector(&fakeClassifier{}, nil)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	got, err := d.DetectTextMood(context.Background(), "anything")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !got.IsNeutralFallback() {
		t.Fatalf("expected neutral fallback got %+v", got)
	}
}

func TestTextDetectorCustomExamples(t *testing.T) {
	custom := []Example{{Text: "meh", Label: "bored"}, {Text: "yay", Label: "joy"}}
	fake := &fakeClassifier{results: []Classification{{Label: "bored", Confidence: 0.7}}}
	d, err := NewTextDetector(fake, custom)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	custom[0].Label = "mutated"

	if _, err := d.DetectTextMood(context.Background(), "ok"); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if fake.examples[0].Label != "bored" {
		t.Fatalf("expected detector to keep its own copy of examples got %+v", fake.examples)
	}
}

func TestTextDetectorFailure(t *testing.T) {
	d, err := NewTextDetector(&fakeClassifier{err: errors.New("cohere down")}, nil)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	if _, err := d.DetectTextMood(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConstructorsRequireDependencies(t *testing.T) {
	if _, err := NewImageDetector(nil); err == nil {
		t.Fatalf("expected error for nil face detector")
	}
	if _, err := NewTextDetector(nil, nil); err == nil {
		t.Fatalf("expected error for nil classifier")
	}
}
