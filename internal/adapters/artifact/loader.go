package artifact

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

// Bundle is a classifier and the encoder it was trained with.
type Bundle struct {
	Forest  *Forest
	Encoder *LabelEncoder
}

// Load reads the forest and the label encoder in parallel and checks that
// every class the forest can emit is decodable. Any failure is a
// *inference.ModelUnavailableError.
func Load(ctx context.Context, modelPath, encoderPath string, schema *questionnaire.Schema) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: modelPath, Err: err}
	}
	var b Bundle
	var g errgroup.Group
	g.Go(func() error {
		f, err := LoadForest(modelPath, schema)
		if err != nil {
			return err
		}
		b.Forest = f
		return nil
	})
	g.Go(func() error {
		e, err := LoadLabelEncoder(encoderPath)
		if err != nil {
			return err
		}
		b.Encoder = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: modelPath, Err: err}
	}
	if err := CheckPairing(b.Forest.Classes(), b.Encoder); err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: encoderPath, Err: err}
	}
	return &b, nil
}

// CheckPairing verifies that dec can decode every label in classes.
func CheckPairing(classes []int, dec inference.Decoder) error {
	for _, c := range classes {
		if _, err := dec.Decode(c); err != nil {
			return fmt.Errorf("classifier class %d: %w", c, err)
		}
	}
	return nil
}
