package transcribe

import "strings"

// SplitSentences cuts text at '.', '!' and '?', trims every fragment and drops
// the empty ones. Order is preserved.
func SplitSentences(text string) Transcript {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := make(Transcript, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			out = append(out, s)
		}
	}
	return out
}
