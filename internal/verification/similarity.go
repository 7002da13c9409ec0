package verification

import (
	"strings"

	"attestry/internal/policy"
	id "attestry/pkg/domain"
)

// FieldSimilarity scores how well extracted certificate fields match the
// stored subject. Only fields present (non-empty) on both sides are
// compared; each contributes a credit of 1.0 for an exact match after
// normalization, its similarity when above the fuzzy threshold, or 0.
// Returns the average credit and the number of fields compared; a zero
// count means no comparison happened and the caller must not use the score.
func FieldSimilarity(stored, extracted id.SubjectFields) (float64, int) {
	pairs := [][2]string{
		{stored.StudentName, extracted.StudentName},
		{stored.DegreeName, extracted.DegreeName},
		{stored.InstitutionName, extracted.InstitutionName},
		{stored.IssuanceDate, extracted.IssuanceDate},
		{stored.CertificateNumber, extracted.CertificateNumber},
	}

	var sum float64
	compared := 0
	for _, pair := range pairs {
		if pair[0] == "" || pair[1] == "" {
			continue
		}
		sum += fieldCredit(pair[0], pair[1])
		compared++
	}
	if compared == 0 {
		return 0, 0
	}
	return sum / float64(compared), compared
}

func fieldCredit(stored, extracted string) float64 {
	a := normalize(stored)
	b := normalize(extracted)
	if a == b {
		return 1.0
	}

	longest := max(len([]rune(a)), len([]rune(b)))
	similarity := 1.0 - float64(levenshtein(a, b))/float64(longest)
	if similarity > policy.FieldMatchThreshold {
		return similarity
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// levenshtein computes the edit distance between two strings: the minimum
// number of single-character insertions, deletions, or substitutions to
// turn one into the other. Single-row dynamic programming, O(min(m,n))
// space. Operates on runes so multi-byte names are one edit per character.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	previous := make([]int, len(ra)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		current := make([]int, len(ra)+1)
		current[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			deletion := previous[i] + 1
			insertion := current[i-1] + 1
			substitution := previous[i-1] + cost

			current[i] = min(deletion, min(insertion, substitution))
		}

		previous = current
	}

	return previous[len(ra)]
}
