package artifact

import (
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
)

type encoderDocument struct {
	Kind    string   `json:"kind"`
	Classes []string `json:"classes"`
}

// LabelEncoder decodes encoded class labels by position, like a fitted
// label encoder's inverse transform.
type LabelEncoder struct {
	path    string
	classes []string
}

// LoadLabelEncoder reads and validates a label encoder export.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: path, Err: err}
	}
	var doc encoderDocument
	if err := decodeDocument(raw, encoderSchemaName, &doc); err != nil {
		return nil, &inference.ModelUnavailableError{Artifact: path, Err: err}
	}
	return &LabelEncoder{path: path, classes: doc.Classes}, nil
}

// NewLabelEncoder builds an encoder from class names in label order.
func NewLabelEncoder(classes ...string) *LabelEncoder {
	out := make([]string, len(classes))
	copy(out, classes)
	return &LabelEncoder{classes: out}
}

// Decode returns the class name for label.
func (e *LabelEncoder) Decode(label int) (string, error) {
	if label < 0 || label >= len(e.classes) {
		return "", &inference.UnknownLabelError{Label: label}
	}
	return e.classes[label], nil
}

// Labels returns the class names in label order.
func (e *LabelEncoder) Labels() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Describe summarizes the loaded encoder.
func (e *LabelEncoder) Describe() map[string]any {
	return map[string]any{
		"kind":   "label_encoder",
		"path":   e.path,
		"labels": e.Labels(),
	}
}
