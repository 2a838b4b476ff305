package extract

import "strings"

// balancedClose returns the index of the parenthesis closing the one at open.
// String literals, template literals and comments are skipped so that
// parentheses inside them do not count.
func balancedClose(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\'', '"', '`':
			end, ok := skipQuoted(src, i)
			if !ok {
				return 0, false
			}
			i = end
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				nl := strings.IndexByte(src[i:], '\n')
				if nl < 0 {
					return 0, false
				}
				i += nl
			case '*':
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return 0, false
				}
				i += end + 3
			}
		}
	}
	return 0, false
}

// skipQuoted returns the index of the quote closing the literal opened at start.
func skipQuoted(src string, start int) (int, bool) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i, true
		}
	}
	return 0, false
}
