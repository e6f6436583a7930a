package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToBytes(t *testing.T) {
	assert.Equal(t, "hello", TruncateToBytes("hello", 150))
	assert.Equal(t, "hel", TruncateToBytes("hello", 3))

	// 3-byte runes: the cut must land on a rune boundary
	s := "日本語のタイトル"
	cut := TruncateToBytes(s, 7)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "日本", cut)

	assert.Equal(t, "", TruncateToBytes("日", 2))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFilename("a/b\\c"))
	assert.Equal(t, "uploader - title", SanitizeFilename("  uploader - title "))
}

func TestShortHost(t *testing.T) {
	assert.Equal(t, "youtube.com", ShortHost("https://youtube.com/watch?v=abc"))
	assert.Equal(t, "not a url", ShortHost("not a url"))
}
