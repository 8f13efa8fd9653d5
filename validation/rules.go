// Package validation holds the character-class predicates of the OAuth 2.0
// grammar (RFC 6749 Appendix A) and RFC 3986 URI syntax.
//
// Every predicate rejects the empty string.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// nchar = "-" / "." / "_" / DIGIT / ALPHA
	ncharPattern = regexp.MustCompile(`^[-._A-Za-z0-9]+$`)

	// nqchar = %x21 / %x23-5B / %x5D-7E
	nqcharPattern = regexp.MustCompile(`^[\x21\x23-\x5B\x5D-\x7E]+$`)

	// nqschar = %x20-21 / %x23-5B / %x5D-7E
	nqscharPattern = regexp.MustCompile(`^[\x20-\x21\x23-\x5B\x5D-\x7E]+$`)

	// unicodecharnocrlf = %x09 / %x20-7E / %x80-D7FF / %xE000-FFFD / %x10000-10FFFF
	ucharPattern = regexp.MustCompile(`^[\x09\x20-\x7E\x{80}-\x{D7FF}\x{E000}-\x{FFFD}\x{10000}-\x{10FFFF}]+$`)

	// scheme ":" ... (RFC 3986 section 3)
	uriPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]+:`)

	// vschar = %x20-7E
	vscharPattern = regexp.MustCompile(`^[\x20-\x7E]+$`)
)

// NChar reports whether value consists of unreserved name characters.
func NChar(value string) bool {
	return ncharPattern.MatchString(value)
}

// NQChar reports whether value consists of characters allowed in a quoted
// string, excluding space.
func NQChar(value string) bool {
	return nqcharPattern.MatchString(value)
}

// NQSChar reports whether value consists of characters allowed in a quoted
// string, including space.
func NQSChar(value string) bool {
	return nqscharPattern.MatchString(value)
}

// UChar reports whether value consists of Unicode characters other than CR
// and LF, including the supplementary planes.
func UChar(value string) bool {
	// regexp decodes invalid UTF-8 as U+FFFD, which the class admits.
	return utf8.ValidString(value) && ucharPattern.MatchString(value)
}

// URI reports whether value starts with a syntactically valid URI scheme.
func URI(value string) bool {
	return uriPattern.MatchString(value)
}

// VSChar reports whether value consists of printable ASCII characters.
func VSChar(value string) bool {
	return vscharPattern.MatchString(value)
}

// Scope reports whether value is an acceptable scope parameter.
func Scope(value string) bool {
	return NQSChar(value)
}

// ScopeTokens splits a scope parameter into its individual tokens.
func ScopeTokens(scope string) []string {
	return strings.Fields(scope)
}

// ScopeCovers reports whether every token of requested is present in granted.
func ScopeCovers(granted, requested string) bool {
	have := make(map[string]struct{})
	for _, s := range ScopeTokens(granted) {
		have[s] = struct{}{}
	}
	for _, s := range ScopeTokens(requested) {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
