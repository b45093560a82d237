package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// normalizeCode folds full width digits and drops whitespace
func normalizeCode(code string) string {
	folded := width.Fold.String(code)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}
