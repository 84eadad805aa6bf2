package action

import "strings"

// Extract returns the first top-level {...} span in text. Braces inside JSON
// string literals are ignored, so prose, markdown fences and trailing
// commentary around the object do not affect the result.
func Extract(text string) (string, bool) {
	offset := 0
	for {
		start := strings.IndexByte(text[offset:], '{')
		if start == -1 {
			return "", false
		}
		start += offset
		if end := findMatchingBrace(text, start); end > start {
			return text[start:end], true
		}
		offset = start + 1
	}
}

// findMatchingBrace returns the index just past the brace that closes the one
// at start, or start when the object is unterminated.
func findMatchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return start
}
