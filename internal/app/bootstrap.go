package app

import (
	"context"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/artifact"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/remote"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/config"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/metrics"
)

// Bootstrap loads the artifacts named by cfg and returns a ready Service.
// Load failures are *inference.ModelUnavailableError and must stop startup.
func Bootstrap(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	schema := questionnaire.GAD7()

	classifier, decoder, err := loadArtifacts(ctx, cfg, schema)
	if err != nil {
		metrics.SetModelLoaded(false)
		return nil, err
	}
	metrics.SetModelLoaded(true)

	if log != nil {
		log.Info(ctx, "artifacts loaded",
			logger.Any("classifier", describe(classifier)),
			logger.Any("decoder", describe(decoder)),
		)
	}

	return New(
		WithSchema(schema),
		WithClassifier(classifier),
		WithDecoder(decoder),
		WithInferenceTimeout(cfg.InferenceTimeout()),
		WithLogger(log),
	), nil
}

func loadArtifacts(ctx context.Context, cfg *config.Config, schema *questionnaire.Schema) (inference.Classifier, inference.Decoder, error) {
	if cfg.ClassifierURL == "" {
		b, err := artifact.Load(ctx, cfg.ModelPath, cfg.EncoderPath, schema)
		if err != nil {
			return nil, nil, err
		}
		return b.Forest, b.Encoder, nil
	}

	rc, err := remote.New(cfg.ClassifierURL, schema, remote.WithTimeout(cfg.InferenceTimeout()))
	if err != nil {
		return nil, nil, &inference.ModelUnavailableError{Artifact: cfg.ClassifierURL, Err: err}
	}
	if err := rc.Probe(ctx); err != nil {
		return nil, nil, err
	}
	enc, err := artifact.LoadLabelEncoder(cfg.EncoderPath)
	if err != nil {
		return nil, nil, err
	}
	return rc, enc, nil
}

func describe(v any) map[string]any {
	if d, ok := v.(inference.Describer); ok {
		return d.Describe()
	}
	return nil
}
