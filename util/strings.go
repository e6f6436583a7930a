package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateToBytes trims s to at most nBytes bytes without splitting a
// multi-byte rune.
func TruncateToBytes(s string, nBytes int) string {
	if len(s) <= nBytes {
		return s
	}
	for nBytes > 0 && !utf8.RuneStart(s[nBytes]) {
		nBytes--
	}
	return s[:nBytes]
}

// SanitizeFilename strips path separators and other characters that are
// unsafe in a filename derived from remote metadata.
func SanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '\x00':
			return '_'
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// ShortHost extracts a display-friendly host from a URL, falling back to
// the raw string when it does not parse as one.
func ShortHost(rawUrl string) string {
	parts := strings.Split(rawUrl, "/")
	if len(parts) >= 3 && parts[2] != "" {
		return parts[2]
	}
	return rawUrl
}
