package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Named references resolved by DecodeEntities. This is a closed set covering
// what shows up in real-world <title> and meta description text; anything
// outside it is left literal.
var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   `"`,
	"&apos;":   "'",
	"&rsquo;":  "’",
	"&lsquo;":  "‘",
	"&rdquo;":  "”",
	"&ldquo;":  "“",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&hellip;": "…",
	"&nbsp;":   " ",
}

var (
	decimalRefRe = regexp.MustCompile(`&#(\d+);`)
	hexRefRe     = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
)

// DecodeEntities resolves decimal and hexadecimal character references plus
// the fixed named set above. Text without references passes through
// unchanged; unknown named entities stay literal.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	s = decimalRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		return decodeCodepoint(ref[2:len(ref)-1], 10, ref)
	})
	s = hexRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		return decodeCodepoint(ref[3:len(ref)-1], 16, ref)
	})

	for entity, literal := range namedEntities {
		s = strings.ReplaceAll(s, entity, literal)
	}
	return s
}

func decodeCodepoint(digits string, base int, orig string) string {
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || n <= 0 || n > 0x10FFFF {
		return orig
	}
	return string(rune(n))
}
