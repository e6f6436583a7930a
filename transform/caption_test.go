package transform

import (
	"image/color"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitybelt/mediakit/artifacts"
)

func TestCaptionPreservesFramesAndTiming(t *testing.T) {
	ctx := testContext(t)
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	durations := []int{200, 300, 400}
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	in := makeGifArtifact(t, ctx, 200, 200, colors, durations)

	out, err := Caption(ctx, in, "hello world", scope)
	require.NoError(t, err)
	assert.True(t, out.Animated)
	assert.Equal(t, 3, out.FrameCount)
	assert.Equal(t, durations, out.FrameDurations)

	seq, err := Decode(ctx, out)
	require.NoError(t, err)
	assert.Len(t, seq.Frames, 3)
	assert.Equal(t, durations, seq.Durations)
}

func TestCaptionGrowsCanvasByWholeBars(t *testing.T) {
	ctx := testContext(t)
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	in := makeStillArtifact(t, ctx, 200, 200, color.White)

	out, err := Caption(ctx, in, "hi", scope)
	require.NoError(t, err)

	seq, err := Decode(ctx, out)
	require.NoError(t, err)

	barHeight := int(200 * captionBarFraction)
	grown := seq.Height() - 200
	assert.Equal(t, 200, seq.Width())
	assert.Greater(t, grown, 0)
	assert.Zero(t, grown%barHeight)
}

// The documented 300px scenario: a caption whose single-line rendering
// exceeds the usable width must wrap into at least two bars, and every
// bar's line must fit the usable width.
func TestCaptionWrapsLongTextInto300pxFrame(t *testing.T) {
	ctx := testContext(t)
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	text := "a very long single token exceeding width"
	in := makeStillArtifact(t, ctx, 300, 300, color.White)

	out, err := Caption(ctx, in, text, scope)
	require.NoError(t, err)

	seq, err := Decode(ctx, out)
	require.NoError(t, err)

	barHeight := int(300 * captionBarFraction)
	bars := (seq.Height() - 300) / barHeight
	assert.GreaterOrEqual(t, bars, 2)

	// Rebuild the layout with the same face and check the width bound
	face, err := loadCaptionFace(ctx, float64(barHeight)*captionFontFraction)
	require.NoError(t, err)
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	widthOf := func(s string) float64 {
		w, _ := measure.MeasureString(s)
		return w
	}

	full := widthOf(text)
	require.Greater(t, full, float64(300-captionMarginPx), "scenario expects the full string to overflow one line")

	lines := wrapLines(text, float64(300-captionMarginPx), widthOf)
	require.Equal(t, bars, len(lines))
	for _, line := range lines {
		if strings.Contains(line, " ") {
			assert.LessOrEqual(t, widthOf(line), float64(300-captionMarginPx))
		}
	}
}

func TestWrapLinesRespectsWidth(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s) * 10) }

	lines := wrapLines("one two three four five", 100, measure)
	for _, line := range lines {
		assert.LessOrEqual(t, measure(line), 100.0)
	}
	assert.Equal(t, "one two three four five", strings.Join(lines, " "))
}

func TestWrapLinesKeepsOverwideWordWhole(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s) * 10) }

	lines := wrapLines("ok incomprehensibilities ok", 100, measure)
	assert.Contains(t, lines, "incomprehensibilities")
	assert.Equal(t, []string{"ok", "incomprehensibilities", "ok"}, lines)
}

func TestWrapLinesEmptyText(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) }
	assert.Empty(t, wrapLines("", 100, measure))
	assert.Empty(t, wrapLines("   ", 100, measure))
}
