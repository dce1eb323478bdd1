package extract

import "strings"

// boilerplateKeywords mark blog widget lines (share, neighbour, like and
// comment buttons) that carry no content.
var boilerplateKeywords = []string{"URL복사", "이웃", "공감", "댓글"}

// CleanText drops every line that contains a boilerplate keyword and trims
// the result. Other lines are kept as they are.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isBoilerplate(line string) bool {
	for _, kw := range boilerplateKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
