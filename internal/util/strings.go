package util

// TokenPrefixLen is how much of a token may appear in logs.
const TokenPrefixLen = 8

// TokenPrefix returns the part of token that is safe to log.
func TokenPrefix(token string) string {
	return SafeTruncate(token, TokenPrefixLen)
}

// SafeTruncate returns at most the first maxLen bytes of s. A negative
// maxLen yields "".
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
