package questionnaire

// RawInput holds one raw answer per question, keyed by field id.
type RawInput map[string]string

// FeatureVector is the numeric encoding of the seven answers in schema
// order. It is an array, so copies never alias.
type FeatureVector [ItemCount]int

// Ints returns the vector as a slice, for encoders that need one.
func (f FeatureVector) Ints() []int {
	out := make([]int, ItemCount)
	copy(out, f[:])
	return out
}

// Normalize maps raw answers to a FeatureVector in schema order. It stops at
// the first missing or unrecognized answer.
func (s *Schema) Normalize(raw RawInput) (FeatureVector, error) {
	var fv FeatureVector
	for i, q := range s.questions {
		answer, ok := raw[q.FieldID]
		if !ok {
			return FeatureVector{}, &InvalidAnswerError{Field: q.FieldID, Missing: true}
		}
		score, err := s.vocab.ScoreOf(answer)
		if err != nil {
			return FeatureVector{}, &InvalidAnswerError{Field: q.FieldID, Value: answer}
		}
		fv[i] = score
	}
	return fv, nil
}

// InputFromAnswers builds a RawInput from answers given in schema order.
// Extra answers are ignored; missing ones are left out of the map.
func (s *Schema) InputFromAnswers(answers []string) RawInput {
	raw := make(RawInput, ItemCount)
	for i, q := range s.questions {
		if i >= len(answers) {
			break
		}
		raw[q.FieldID] = answers[i]
	}
	return raw
}
