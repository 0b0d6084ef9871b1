package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize drops bytes we never want in stored listing text: NUL and ASCII
// controls other than \n \r \t, DEL, C1 controls and invalid UTF-8
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\r', r == '\t':
			return r
		case r < 0x20, r == 0x7F, r >= 0x80 && r <= 0x9F, r == utf8.RuneError:
			return -1
		}
		return r
	}, s)
}
