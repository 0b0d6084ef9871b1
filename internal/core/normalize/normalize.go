// Package normalize folds free text into a comparable search form
// Pipeline order
// 1 drop control bytes and invalid UTF-8
// 2 Unicode NFKD so precomposed letters split into base + mark
// 3 Case folding
// 4 Remove combining marks and format chars (accents, ZWJ, BOM)
// 5 Width fold fullwidth to ASCII
// 6 NFC recompose what is left
// 7 Collapse whitespace runs to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Transformer chains keep state, so each caller borrows its own
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// Fold returns the search form of s
// "Çanta  ÖZEL" and "canta ozel" fold to the same string
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = strings.ToLower(s)
	}
	return collapseSpaces(foldSpecial(out))
}

// foldSpecial handles letters that have no decomposition but are typed
// interchangeably with an ASCII base letter
func foldSpecial(s string) string {
	if !strings.ContainsAny(s, "ıøłđß") {
		return s
	}
	return specialReplacer.Replace(s)
}

var specialReplacer = strings.NewReplacer("ı", "i", "ø", "o", "ł", "l", "đ", "d", "ß", "ss")

// collapseSpaces turns every whitespace run into one ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = b.Len() > 0
			continue
		}
		if inWS {
			b.WriteByte(' ')
			inWS = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
