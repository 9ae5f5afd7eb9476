package mood

import (
	"math"
	"sort"
	"strings"
)

// Known emotion labels. The label space is open; these are the ones the detectors emit.
const (
	Joy      = "joy"
	Sorrow   = "sorrow"
	Anger    = "anger"
	Surprise = "surprise"
	Neutral  = "neutral"
)

// Descriptor is the normalized mood shared by the image and text paths.
type Descriptor struct {
	Emotions        []string `json:"emotions"`
	Confidence      float64  `json:"confidence"`
	DominantEmotion string   `json:"dominantEmotion"`
}

// NeutralDescriptor is returned whenever upstream signal is absent or inconclusive.
func NeutralDescriptor() Descriptor {
	return Descriptor{
		Emotions:        []string{Neutral},
		Confidence:      1.0,
		DominantEmotion: Neutral,
	}
}

// IsNeutralFallback reports whether d is exactly the fallback descriptor.
func (d Descriptor) IsNeutralFallback() bool {
	return len(d.Emotions) == 1 && d.Emotions[0] == Neutral &&
		d.DominantEmotion == Neutral && d.Confidence == 1.0
}

// Likelihood is the vision service's ordinal confidence scale.
type Likelihood int

const (
	Unknown Likelihood = iota
	VeryUnlikely
	Unlikely
	Possible
	Likely
	VeryLikely
)

// Confidence maps an ordinal to [0,1]. Ordinals below Possible are not significant.
func (l Likelihood) Confidence() (float64, bool) {
	if l < Possible || l > VeryLikely {
		return 0, false
	}
	return float64(l-1) / 4, true
}

func (l Likelihood) String() string {
	switch l {
	case VeryUnlikely:
		return "VERY_UNLIKELY"
	case Unlikely:
		return "UNLIKELY"
	case Possible:
		return "POSSIBLE"
	case Likely:
		return "LIKELY"
	case VeryLikely:
		return "VERY_LIKELY"
	default:
		return "UNKNOWN"
	}
}

// FaceSignals holds the four likelihoods read from one detected face.
type FaceSignals struct {
	Joy      Likelihood
	Sorrow   Likelihood
	Anger    Likelihood
	Surprise Likelihood
}

type scoredEmotion struct {
	label      string
	confidence float64
}

// FromFaces normalizes face detector output. Only the first face is considered.
// Equal confidences keep the joy, sorrow, anger, surprise order.
func FromFaces(faces []FaceSignals) Descriptor {
	if len(faces) == 0 {
		return NeutralDescriptor()
	}
	face := faces[0]
	signals := []struct {
		label      string
		likelihood Likelihood
	}{
		{Joy, face.Joy},
		{Sorrow, face.Sorrow},
		{Anger, face.Anger},
		{Surprise, face.Surprise},
	}

	scored := make([]scoredEmotion, 0, len(signals))
	for _, s := range signals {
		if confidence, ok := s.likelihood.Confidence(); ok {
			scored = append(scored, scoredEmotion{label: s.label, confidence: confidence})
		}
	}
	if len(scored) == 0 {
		return NeutralDescriptor()
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].confidence > scored[j].confidence
	})

	emotions := make([]string, 0, len(scored))
	for _, s := range scored {
		emotions = append(emotions, s.label)
	}
	return Descriptor{
		Emotions:        emotions,
		Confidence:      scored[0].confidence,
		DominantEmotion: scored[0].label,
	}
}

// Classification is one ranked (label, confidence) entry from a text classifier.
type Classification struct {
	Label      string
	Confidence float64
}

// FromClassifications normalizes classifier output using the top entry only.
func FromClassifications(results []Classification) Descriptor {
	if len(results) == 0 {
		return NeutralDescriptor()
	}
	top := results[0]
	label := strings.TrimSpace(top.Label)
	if label == "" {
		return NeutralDescriptor()
	}
	return Descriptor{
		Emotions:        []string{label},
		Confidence:      clampConfidence(top.Confidence),
		DominantEmotion: label,
	}
}

func clampConfidence(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
