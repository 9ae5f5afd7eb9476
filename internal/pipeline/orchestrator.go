package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"moodsong/backend/internal/metrics"
	"moodsong/backend/internal/mood"
	"moodsong/backend/internal/recommend"
	"moodsong/backend/internal/util"
)

var (
	// ErrDetection marks a failed remote detection or classification call.
	ErrDetection = errors.New("mood detection failed")
	// ErrGeneration marks a failed remote recommendation call.
	ErrGeneration = errors.New("recommendation failed")
)

// ImageMoodDetector derives a mood from image bytes.
type ImageMoodDetector interface {
	DetectImageMood(ctx context.Context, image []byte) (mood.Descriptor, error)
}

// TextMoodDetector derives a mood from free text.
type TextMoodDetector interface {
	DetectTextMood(ctx context.Context, text string) (mood.Descriptor, error)
}

// Recommender turns a mood into a recommendation.
type Recommender interface {
	Recommend(ctx context.Context, d mood.Descriptor) (recommend.Result, error)
}

// Orchestrator runs detect-then-recommend for each input modality.
type Orchestrator struct {
	image       ImageMoodDetector
	text        TextMoodDetector
	recommender Recommender
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(image ImageMoodDetector, text TextMoodDetector, recommender Recommender) *Orchestrator {
	return &Orchestrator{
		image:       image,
		text:        text,
		recommender: recommender,
	}
}

// AnalyzeImageAndRecommend detects the mood of an image and recommends a song for it.
func (o *Orchestrator) AnalyzeImageAndRecommend(ctx context.Context, image []byte) (recommend.Result, error) {
	if o.image == nil {
		return recommend.Result{}, fmt.Errorf("%w: image detector not configured", ErrDetection)
	}
	timer := util.StartTimer()
	d, err := o.image.DetectImageMood(ctx, image)
	metrics.RecordStage(metrics.StageDetectImage, timer.Elapsed(), err)
	if err != nil {
		logStageFailure(ctx, metrics.StageDetectImage, timer, err)
		return recommend.Result{}, fmt.Errorf("%w: %w", ErrDetection, err)
	}
	logDetection(ctx, "image", d, timer)
	return o.recommend(ctx, d)
}

// AnalyzeTextAndRecommend detects the mood of a text and recommends a song for it.
func (o *Orchestrator) AnalyzeTextAndRecommend(ctx context.Context, text string) (recommend.Result, error) {
	if o.text == nil {
		return recommend.Result{}, fmt.Errorf("%w: text detector not configured", ErrDetection)
	}
	timer := util.StartTimer()
	d, err := o.text.DetectTextMood(ctx, text)
	metrics.RecordStage(metrics.StageDetectText, timer.Elapsed(), err)
	if err != nil {
		logStageFailure(ctx, metrics.StageDetectText, timer, err)
		return recommend.Result{}, fmt.Errorf("%w: %w", ErrDetection, err)
	}
	logDetection(ctx, "text", d, timer)
	return o.recommend(ctx, d)
}

func (o *Orchestrator) recommend(ctx context.Context, d mood.Descriptor) (recommend.Result, error) {
	if o.recommender == nil {
		return recommend.Result{}, fmt.Errorf("%w: recommender not configured", ErrGeneration)
	}
	timer := util.StartTimer()
	result, err := o.recommender.Recommend(ctx, d)
	metrics.RecordStage(metrics.StageRecommend, timer.Elapsed(), err)
	if err != nil {
		logStageFailure(ctx, metrics.StageRecommend, timer, err)
		return recommend.Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	logrus.WithFields(logrus.Fields{
		"request_id":  util.RequestID(ctx),
		"stage":       metrics.StageRecommend,
		"duration_ms": timer.ElapsedMs(),
		"chars":       len(result.Recommendation),
	}).Debug("recommendation generated")
	return result, nil
}

func logDetection(ctx context.Context, source string, d mood.Descriptor, timer util.Timer) {
	if d.IsNeutralFallback() {
		metrics.RecordNeutralFallback(source)
	}
	logrus.WithFields(logrus.Fields{
		"request_id":  util.RequestID(ctx),
		"source":      source,
		"dominant":    d.DominantEmotion,
		"emotions":    d.Emotions,
		"confidence":  d.Confidence,
		"duration_ms": timer.ElapsedMs(),
	}).Debug("mood detected")
}

func logStageFailure(ctx context.Context, stage string, timer util.Timer, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"request_id":  util.RequestID(ctx),
		"stage":       stage,
		"duration_ms": timer.ElapsedMs(),
	}).Warn("pipeline stage failed")
}
