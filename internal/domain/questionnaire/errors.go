package questionnaire

import (
	"errors"
	"fmt"
)

// ErrInvalidAnswer is matched by every *InvalidAnswerError via errors.Is.
var ErrInvalidAnswer = errors.New("invalid answer")

// InvalidAnswerError reports the field and value that failed normalization.
// Field is empty when the error comes from a bare vocabulary lookup.
type InvalidAnswerError struct {
	Field   string
	Value   string
	Missing bool
}

func (e *InvalidAnswerError) Error() string {
	switch {
	case e.Missing:
		return fmt.Sprintf("missing answer for field %q", e.Field)
	case e.Field == "":
		return fmt.Sprintf("invalid answer %q", e.Value)
	default:
		return fmt.Sprintf("invalid answer %q for field %q", e.Value, e.Field)
	}
}

// Is reports whether target is ErrInvalidAnswer.
func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswer
}
