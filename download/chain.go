package download

import (
	"fmt"
	"strings"
)

// FormatChain builds the ordered fallback chain of format selectors for a
// normalized request. Widely-compatible codecs come first, then the
// resolution ceiling is relaxed, then codec constraints drop entirely; the
// final rung is always satisfiable so the chain terminates.
func FormatChain(r Request) []string {
	r = r.normalize()

	if r.Mode == ModeAudioOnly {
		return []string{
			fmt.Sprintf("bestaudio[ext=%s]", r.AudioFormat),
			"bestaudio[acodec=aac]",
			"bestaudio",
			"best",
		}
	}

	q := r.VideoQuality
	return []string{
		fmt.Sprintf("bestvideo[vcodec=h264][height<=%s]+bestaudio[acodec=aac]", q),
		fmt.Sprintf("bestvideo[vcodec=h264][height<=%s]+bestaudio", q),
		fmt.Sprintf("bestvideo[vcodec=vp9][ext=webm][height<=%s]+bestaudio[ext=webm]", q),
		fmt.Sprintf("bestvideo[vcodec=vp9][ext=webm][height<=%s]+bestaudio", q),
		fmt.Sprintf("bestvideo[height<=%s]+bestaudio", q),
		"bestvideo+bestaudio",
		"best",
	}
}

// FormatSelector renders the chain as the single slash-joined expression
// the extraction engine consumes.
func FormatSelector(r Request) string {
	return strings.Join(FormatChain(r), "/")
}
