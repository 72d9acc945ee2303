package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/safespace-labs/safespace/pkg/patterns"
)

// leetMap reverses the character substitutions commonly used to slip
// abusive keywords past filters ("k1ll", "d!e", "$lut").
var leetMap = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a', '5': 's',
	'7': 't', '$': 's', '8': 'b', '!': 'i', '@': 'a',
}

// prepareSubject builds the matching subject for one input text: the raw
// text plus three normalized variants. A keyword counts as present if it
// appears in any variant, which defeats spacing and leetspeak evasion.
func prepareSubject(text string) patterns.Subject {
	lower := strings.ToLower(norm.NFKC.String(text))
	collapsed := collapseWhitespace(lower)
	deobfuscated := deobfuscate(lower)

	return patterns.Subject{
		Raw:   text,
		Forms: []string{lower, collapsed, deobfuscated},
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// deobfuscate strips non-alphanumeric runes (spaces survive) and maps
// leetspeak substitutions back to letters. Leet characters are mapped
// before the strip so "$" and "!" are not lost.
func deobfuscate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := leetMap[r]; ok {
			b.WriteRune(sub)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
