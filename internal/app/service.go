// Package app provides the prediction service that implements the
// dependencies required by the HTTP API and the CLI.
package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/metrics"
)

// Error kinds used for metrics and API error codes.
const (
	KindInvalidAnswer    = "invalid_answer"
	KindModelUnavailable = "model_unavailable"
	KindInference        = "inference_error"
	KindUnknownLabel     = "label_mismatch"
	KindUnknown          = "unknown"
)

var errNotConfigured = errors.New("not configured")

// Result is the outcome of one prediction.
type Result struct {
	TotalScore          int    `json:"total_score"`
	AnxietyLevel        string `json:"anxiety_level"`
	AnxietyLabelEncoded int    `json:"anxiety_label_encoded"`
}

// Service runs the prediction pipeline. It holds only read-only artifacts
// and counters, so Predict may be called concurrently.
type Service struct {
	schema     *questionnaire.Schema
	classifier inference.Classifier
	decoder    inference.Decoder

	inferenceTimeout time.Duration

	served    atomic.Int64
	failed    atomic.Int64
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSchema replaces the question schema.
func WithSchema(schema *questionnaire.Schema) Option {
	return func(s *Service) {
		if schema != nil {
			s.schema = schema
		}
	}
}

// WithClassifier sets the classifier adapter.
func WithClassifier(c inference.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithDecoder sets the label decoder.
func WithDecoder(d inference.Decoder) Option {
	return func(s *Service) {
		if d != nil {
			s.decoder = d
		}
	}
}

// WithInferenceTimeout bounds each classify call. Zero disables the bound.
func WithInferenceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.inferenceTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without a classifier or decoder every
// prediction fails with *inference.ModelUnavailableError.
func New(opts ...Option) *Service {
	s := &Service{
		schema:     questionnaire.GAD7(),
		classifier: inference.Unavailable{Artifact: "classifier", Err: errNotConfigured},
		decoder:    inference.Unavailable{Artifact: "label encoder", Err: errNotConfigured},
		startedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Schema returns the question schema the service normalizes against.
func (s *Service) Schema() *questionnaire.Schema { return s.schema }

// Ready reports whether both artifacts are configured.
func (s *Service) Ready() bool {
	_, noClassifier := s.classifier.(inference.Unavailable)
	_, noDecoder := s.decoder.(inference.Unavailable)
	return !noClassifier && !noDecoder
}

// Predict normalizes raw, scores it, classifies it and decodes the label.
// Any failure aborts the whole prediction; no partial result is returned.
func (s *Service) Predict(ctx context.Context, raw questionnaire.RawInput) (Result, error) {
	res, err := s.predict(ctx, raw)
	if err != nil {
		s.failed.Add(1)
		metrics.RecordPredictionError(Kind(err))
		return Result{}, err
	}
	s.served.Add(1)
	metrics.RecordPrediction(res.AnxietyLevel, res.TotalScore)
	if s.logger != nil {
		s.logger.Debug(ctx, "prediction served",
			logger.Int("total_score", res.TotalScore),
			logger.String("anxiety_level", res.AnxietyLevel),
		)
	}
	return res, nil
}

func (s *Service) predict(ctx context.Context, raw questionnaire.RawInput) (Result, error) {
	features, err := s.schema.Normalize(raw)
	if err != nil {
		return Result{}, err
	}
	total := questionnaire.TotalScore(features)

	encoded, err := s.classify(ctx, features)
	if err != nil {
		return Result{}, err
	}

	level, err := s.decoder.Decode(encoded)
	if err != nil {
		if !errors.Is(err, inference.ErrUnknownLabel) && !errors.Is(err, inference.ErrModelUnavailable) {
			err = &inference.InferenceError{Err: err}
		}
		return Result{}, err
	}

	return Result{
		TotalScore:          total,
		AnxietyLevel:        level,
		AnxietyLabelEncoded: encoded,
	}, nil
}

type classifyOutcome struct {
	label int
	err   error
}

// classify calls the classifier under the configured timeout. A timeout or
// an untyped failure becomes *inference.InferenceError.
func (s *Service) classify(ctx context.Context, features questionnaire.FeatureVector) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if s.inferenceTimeout <= 0 {
		return typedClassifyResult(s.classifier.Classify(ctx, features))
	}

	ctx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	ch := make(chan classifyOutcome, 1)
	go func() {
		label, err := s.classifier.Classify(ctx, features)
		ch <- classifyOutcome{label: label, err: err}
	}()

	select {
	case out := <-ch:
		return typedClassifyResult(out.label, out.err)
	case <-ctx.Done():
		return 0, &inference.InferenceError{Err: ctx.Err()}
	}
}

func typedClassifyResult(label int, err error) (int, error) {
	if err == nil {
		return label, nil
	}
	if errors.Is(err, inference.ErrModelUnavailable) || errors.Is(err, inference.ErrInference) {
		return 0, err
	}
	return 0, &inference.InferenceError{Err: err}
}

// Kind classifies a prediction error for metrics and API error codes.
func Kind(err error) string {
	switch {
	case errors.Is(err, questionnaire.ErrInvalidAnswer):
		return KindInvalidAnswer
	case errors.Is(err, inference.ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, inference.ErrUnknownLabel):
		return KindUnknownLabel
	case errors.Is(err, inference.ErrInference):
		return KindInference
	default:
		return KindUnknown
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"ready":              s.Ready(),
		"questions":          questionnaire.ItemCount,
		"predictions_served": s.served.Load(),
		"predictions_failed": s.failed.Load(),
		"uptime_seconds":     int64(time.Since(s.startedAt).Seconds()),
		"inference_timeout":  s.inferenceTimeout.String(),
	}
	if d, ok := s.classifier.(inference.Describer); ok {
		stats["classifier"] = d.Describe()
	}
	if d, ok := s.decoder.(inference.Describer); ok {
		stats["decoder"] = d.Describe()
	}
	return stats
}
