package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common/config"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

func testContext(t *testing.T) rcontext.RequestContext {
	c := config.NewDefaultConfig()
	c.Artifacts.TempDirectory = t.TempDir()
	return rcontext.ForTest(c)
}

func makeStillArtifact(t *testing.T, ctx rcontext.RequestContext, width int, height int, fill color.Color) *artifacts.Artifact {
	img := imaging.New(width, height, fill)
	buf := &bytes.Buffer{}
	require.NoError(t, imaging.Encode(buf, img, imaging.PNG))
	a, err := artifacts.FromBytes(ctx, buf.Bytes(), "png")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Discard() })
	return a
}

// makeGifArtifact builds an animation with one solid frame per entry in
// colors, with delays given in milliseconds.
func makeGifArtifact(t *testing.T, ctx rcontext.RequestContext, width int, height int, colors []color.RGBA, durationsMs []int) *artifacts.Artifact {
	require.Equal(t, len(colors), len(durationsMs))

	palette := color.Palette{color.White, color.Black}
	for _, c := range colors {
		palette = append(palette, c)
	}

	g := &gif.GIF{LoopCount: 0}
	for i, c := range colors {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), palette)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				frame.Set(x, y, c)
			}
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, durationsMs[i]/10)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.Config = image.Config{Width: width, Height: height}

	buf := &bytes.Buffer{}
	require.NoError(t, gif.EncodeAll(buf, g))
	a, err := artifacts.FromBytes(ctx, buf.Bytes(), "gif")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Discard() })
	return a
}

func makeOverlayAsset(t *testing.T, ctx rcontext.RequestContext, fill color.Color) {
	overlay := imaging.New(64, 32, fill)
	p := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, imaging.Save(overlay, p))
	ctx.Config.Transform.OverlayPath = p
}
