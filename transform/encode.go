package transform

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

// Encode writes a sequence to a new tracked artifact: an infinitely
// looping GIF for animated sequences, a PNG otherwise. Frame durations
// carry over exactly; frames are re-quantized to an adaptive palette with
// no dithering so the output is deterministic.
func Encode(ctx rcontext.RequestContext, seq *Sequence, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	if seq.Animated {
		return encodeGif(ctx, seq, scope)
	}

	a, f, err := artifacts.Create(ctx, "png")
	if err != nil {
		return nil, err
	}
	if err = imaging.Encode(f, seq.Frames[0], imaging.PNG); err != nil {
		_ = f.Close()
		_ = a.Discard()
		return nil, fmt.Errorf("png: %s: %w", err.Error(), common.ErrDecodeFailed)
	}
	if err = a.Seal(f); err != nil {
		_ = a.Discard()
		return nil, err
	}
	a.FrameCount = 1
	return scope.Track(a), nil
}

func encodeGif(ctx rcontext.RequestContext, seq *Sequence, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	g := &gif.GIF{
		LoopCount: 0, // loop forever
	}
	for i, frame := range seq.Frames {
		g.Image = append(g.Image, quantize(frame))
		g.Delay = append(g.Delay, seq.Durations[i]/10)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.Config = image.Config{
		Width:  g.Image[0].Bounds().Dx(),
		Height: g.Image[0].Bounds().Dy(),
	}

	a, f, err := artifacts.Create(ctx, "gif")
	if err != nil {
		return nil, err
	}
	if err = gif.EncodeAll(f, g); err != nil {
		_ = f.Close()
		_ = a.Discard()
		return nil, fmt.Errorf("gif: %s: %w", err.Error(), common.ErrDecodeFailed)
	}
	if err = a.Seal(f); err != nil {
		_ = a.Discard()
		return nil, err
	}

	a.Animated = true
	a.FrameCount = len(seq.Frames)
	a.FrameDurations = append([]int(nil), seq.Durations...)
	return scope.Track(a), nil
}

// quantize maps a frame onto an adaptive palette without dithering.
// Colors are ranked by frequency with a fixed tie-break so repeated runs
// produce identical output.
func quantize(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			counts[rgbaAt(img, x, y)]++
		}
	}

	type weighted struct {
		c color.RGBA
		n int
	}
	ranked := make([]weighted, 0, len(counts))
	for c, n := range counts {
		ranked = append(ranked, weighted{c, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return packRgba(ranked[i].c) < packRgba(ranked[j].c)
	})
	if len(ranked) > 256 {
		ranked = ranked[:256]
	}

	palette := make(color.Palette, 0, len(ranked))
	for _, w := range ranked {
		palette = append(palette, w.c)
	}

	pm := image.NewPaletted(bounds, palette)
	draw.Draw(pm, bounds, img, bounds.Min, draw.Src)
	return pm
}

func rgbaAt(img image.Image, x int, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func packRgba(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}
