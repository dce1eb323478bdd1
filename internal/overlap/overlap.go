// Package overlap removes speech-to-text segments that duplicate subtitle lines.
//
// Similarity is the InDel ratio: 100 * 2*LCS(a, b) / (len(a) + len(b)), computed
// over runes. It is case and punctuation sensitive; identical strings score 100.
package overlap

import (
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// DefaultThreshold is the ratio at or above which two segments count as duplicates.
const DefaultThreshold = 85

// Score is the unrounded similarity of a and b on a 0-100 scale.
func Score(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	common := edlib.LCS(a, b)
	return 100 * float64(2*common) / float64(total)
}

// Ratio is Score rounded to the nearest integer, for reporting.
func Ratio(a, b string) int {
	return int(math.Round(Score(a, b)))
}

// IsSimilar reports whether Score(a, b) reaches threshold. The unrounded score
// is compared, so 84.5 is below a threshold of 85.
func IsSimilar(a, b string, threshold int) bool {
	return Score(a, b) >= float64(threshold)
}

// Resolve returns the speech segments that are not similar to any subtitle segment,
// in their original order. Every speech segment is compared to every subtitle segment.
func Resolve(speech, subtitles []string, threshold int) []string {
	unique := make([]string, 0, len(speech))
	for _, s := range speech {
		if !matchesAny(s, subtitles, threshold) {
			unique = append(unique, s)
		}
	}
	return unique
}

func matchesAny(segment string, subtitles []string, threshold int) bool {
	for _, sub := range subtitles {
		if IsSimilar(segment, sub, threshold) {
			return true
		}
	}
	return false
}
