// Package questionnaire defines the GAD-7 answer vocabulary, the ordered
// question schema, and the pure functions that turn raw answers into the
// numeric feature vector consumed by scoring and classification.
package questionnaire

// Canonical answer strings. Matching is exact: no trimming or case-folding.
const (
	AnswerNever          = "Tidak Pernah"
	AnswerSeveralDays    = "Beberapa Hari"
	AnswerMoreThanHalf   = "Lebih dari Separuh Waktu yang ditentukan"
	AnswerNearlyEveryDay = "Hampir Setiap Hari"
)

// Score bounds for a single answer.
const (
	MinAnswerScore = 0
	MaxAnswerScore = 3
)

// Answer pairs a recognized answer string with its severity score.
type Answer struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Vocabulary is the immutable set of recognized answers. It is safe for
// concurrent use because it is never mutated after construction.
type Vocabulary struct {
	answers []Answer
	index   map[string]int
}

var defaultVocabulary = newVocabulary(
	Answer{Text: AnswerNever, Score: 0},
	Answer{Text: AnswerSeveralDays, Score: 1},
	Answer{Text: AnswerMoreThanHalf, Score: 2},
	Answer{Text: AnswerNearlyEveryDay, Score: 3},
)

func newVocabulary(answers ...Answer) *Vocabulary {
	v := &Vocabulary{
		answers: answers,
		index:   make(map[string]int, len(answers)),
	}
	for _, a := range answers {
		v.index[a.Text] = a.Score
	}
	return v
}

// DefaultVocabulary returns the shared GAD-7 answer vocabulary.
func DefaultVocabulary() *Vocabulary { return defaultVocabulary }

// ScoreOf returns the score of answer, or an *InvalidAnswerError when the
// string is not one of the recognized answers.
func (v *Vocabulary) ScoreOf(answer string) (int, error) {
	score, ok := v.index[answer]
	if !ok {
		return 0, &InvalidAnswerError{Value: answer}
	}
	return score, nil
}

// Answers returns a copy of the recognized answers in score order.
func (v *Vocabulary) Answers() []Answer {
	out := make([]Answer, len(v.answers))
	copy(out, v.answers)
	return out
}

// ScoreOf looks answer up in the default vocabulary.
func ScoreOf(answer string) (int, error) {
	return defaultVocabulary.ScoreOf(answer)
}
