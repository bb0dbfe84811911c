package core

const (
	// MaxExplanations is the number of ranked explanations requested per job
	MaxExplanations = 5
	// ChartExplanationCount is how many ranks the results chart shows
	ChartExplanationCount = 4
	// EmailExplanationCount is how many ranks feed a rejection email
	EmailExplanationCount = 3
)

// ExtractExplanations returns up to topN relabelled explanations in rank
// order, skipping ranks the result does not carry.
func ExtractExplanations(result *ScoringResult, topN int) []ExplanationTriple {
	if result == nil || topN <= 0 {
		return nil
	}

	triples := make([]ExplanationTriple, 0, topN)
	for i := 0; i < topN && i < len(result.Explanations); i++ {
		exp := result.Explanations[i]
		if !exp.Present {
			continue
		}
		label, err := DisplayLabel(exp.FeatureName)
		if err != nil {
			label = exp.FeatureName
		}
		triples = append(triples, ExplanationTriple{
			Label:    label,
			Value:    exp.ActualValue,
			Strength: exp.Strength,
		})
	}
	return triples
}
