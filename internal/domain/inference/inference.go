// Package inference defines the narrow capabilities the prediction pipeline
// needs from pre-trained artifacts, and the errors they may report.
package inference

import (
	"context"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

// Classifier maps a feature vector in schema order to an encoded class
// label. Implementations must be safe for concurrent use and deterministic
// for a given loaded artifact.
type Classifier interface {
	// Classify returns the encoded label. Failures are *ModelUnavailableError
	// or *InferenceError.
	Classify(ctx context.Context, features questionnaire.FeatureVector) (int, error)
}

// Decoder maps an encoded class label back to its human-readable name.
type Decoder interface {
	// Decode returns *UnknownLabelError for labels outside the fitted set.
	Decode(label int) (string, error)
}

// Describer is optionally implemented by artifacts to report what was loaded.
type Describer interface {
	Describe() map[string]any
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, features questionnaire.FeatureVector) (int, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, features questionnaire.FeatureVector) (int, error) {
	return f(ctx, features)
}

// Unavailable is a Classifier and Decoder that always reports the artifact
// as missing. It stands in when loading failed.
type Unavailable struct {
	Artifact string
	Err      error
}

// Classify always fails with *ModelUnavailableError.
func (u Unavailable) Classify(context.Context, questionnaire.FeatureVector) (int, error) {
	return 0, &ModelUnavailableError{Artifact: u.Artifact, Err: u.Err}
}

// Decode always fails with *ModelUnavailableError.
func (u Unavailable) Decode(int) (string, error) {
	return "", &ModelUnavailableError{Artifact: u.Artifact, Err: u.Err}
}
