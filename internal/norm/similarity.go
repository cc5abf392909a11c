package norm

import (
	"strings"
)

// TokenSetSimilarity returns the Jaccard similarity between the
// lowercased whitespace-split token sets of a and b, in [0,1]. Two empty
// strings are identical; one empty string matches nothing.
func TokenSetSimilarity(a, b string) float64 {
	return tokenSimilarity(a, b, false)
}

func tokenSimilarity(a, b string, caseSensitive bool) float64 {
	tokensA := tokenSet(a, caseSensitive)
	tokensB := tokenSet(b, caseSensitive)

	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range tokensA {
		if tokensB[tok] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	return float64(intersection) / float64(union)
}

// CalculateSimilarity compares two titles under the normalizer's options.
func (n *Normalizer) CalculateSimilarity(a, b string) SimilarityResult {
	score := tokenSimilarity(n.normalizeForCompare(a), n.normalizeForCompare(b), n.opts.CaseSensitive)

	confidence := score / n.opts.Threshold
	if confidence > 1 {
		confidence = 1
	}

	return SimilarityResult{
		IsSimilar:  score >= n.opts.Threshold,
		Score:      score,
		Confidence: confidence,
	}
}

// IsSimilarTitle reports whether two titles meet the similarity threshold.
func (n *Normalizer) IsSimilarTitle(a, b string) bool {
	return n.CalculateSimilarity(a, b).IsSimilar
}

func (n *Normalizer) normalizeForCompare(s string) string {
	if !n.opts.CaseSensitive {
		s = strings.ToLower(s)
	}
	if n.opts.NormalizeWhitespace {
		s = whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	}
	return s
}

func tokenSet(s string, caseSensitive bool) map[string]bool {
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
