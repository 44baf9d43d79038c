package questionnaire

// Total score bounds for a complete questionnaire.
const (
	MinTotalScore = 0
	MaxTotalScore = ItemCount * MaxAnswerScore
)

// Published GAD-7 severity bands.
const (
	SeverityMinimal  = "minimal"
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// TotalScore sums the feature values. For a vector produced by Normalize the
// result lies in [MinTotalScore, MaxTotalScore].
func TotalScore(f FeatureVector) int {
	total := 0
	for _, v := range f {
		total += v
	}
	return total
}

// Severity maps a total score to the published GAD-7 cut-offs. It is a
// reference band only; the service's anxiety level comes from the classifier.
func Severity(total int) string {
	switch {
	case total >= 15:
		return SeveritySevere
	case total >= 10:
		return SeverityModerate
	case total >= 5:
		return SeverityMild
	default:
		return SeverityMinimal
	}
}
