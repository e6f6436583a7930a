package transform

import (
	"bytes"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
)

func TestToAnimationWrapsStillImage(t *testing.T) {
	ctx := testContext(t)
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	fill := color.NRGBA{R: 20, G: 120, B: 220, A: 255}
	in := makeStillArtifact(t, ctx, 60, 40, fill)

	out, err := ToAnimation(ctx, in, scope)
	require.NoError(t, err)
	assert.Equal(t, "gif", out.Ext)
	assert.True(t, out.Animated)
	assert.Equal(t, 1, out.FrameCount)

	// The output must decode as a real animation container
	raw, err := out.ReadAll()
	require.NoError(t, err)
	g, err := gif.DecodeAll(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, g.Image, 1)
	assert.Equal(t, 0, g.LoopCount)

	// Same visible pixels as the input
	r, gr, b, _ := g.Image[0].At(30, 20).RGBA()
	assert.Equal(t, uint32(20), r>>8)
	assert.Equal(t, uint32(120), gr>>8)
	assert.Equal(t, uint32(220), b>>8)
}

func TestToAnimationKeepsExistingAnimation(t *testing.T) {
	ctx := testContext(t)
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	durations := []int{150, 150, 250}
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	in := makeGifArtifact(t, ctx, 50, 50, colors, durations)

	out, err := ToAnimation(ctx, in, scope)
	require.NoError(t, err)
	assert.Equal(t, 3, out.FrameCount)
	assert.Equal(t, durations, out.FrameDurations)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	ctx := testContext(t)

	a, err := artifacts.FromBytes(ctx, []byte("certainly not an image"), "png")
	require.NoError(t, err)
	defer func() { _ = a.Discard() }()

	_, err = Decode(ctx, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDecodeFailed)
}

func TestDecodeDefaultsMissingFrameTiming(t *testing.T) {
	ctx := testContext(t)

	// Zero delays in the container must come back as the default timing
	in := makeGifArtifact(t, ctx, 20, 20, []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}}, []int{0, 0})
	seq, err := Decode(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []int{DefaultFrameDurationMs, DefaultFrameDurationMs}, seq.Durations)
}
