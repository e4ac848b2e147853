package llm

import (
	"fmt"
	"strings"
)

// ExtractJSON locates the first JSON object or array embedded in model output
// and returns the exact substring covering it. Models routinely wrap their
// answer in prose or markdown fences, so everything outside the brackets is
// ignored. String literals are honored so braces inside values do not confuse
// the scan.
func ExtractJSON(text string) (string, error) {
	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no opening bracket", ErrMalformedOutput)
	}

	var stack []byte
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
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: unexpected %q", ErrMalformedOutput, c)
			}
			open := stack[len(stack)-1]
			if (c == '}' && open != '{') || (c == ']' && open != '[') {
				return "", fmt.Errorf("%w: mismatched %q", ErrMalformedOutput, c)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return strings.TrimSpace(text[start : i+1]), nil
			}
		}
	}

	return "", fmt.Errorf("%w: unclosed brackets", ErrMalformedOutput)
}
