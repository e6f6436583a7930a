package transform

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/fogleman/gg"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

const captionBarFraction = 0.13 // bar height as a share of frame height
const captionFontFraction = 0.7 // font size as a share of bar height
const captionMarginPx = 20

var captionBarColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Caption stacks one solid bar per wrapped caption line above every frame.
// Bar height is recomputed from the original frame height on every call;
// the wrapped layout is computed once and reapplied to each frame so an
// animation gets an identical stack throughout. Frame count and timing
// are preserved exactly.
func Caption(ctx rcontext.RequestContext, a *artifacts.Artifact, text string, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	seq, err := Decode(ctx, a)
	if err != nil {
		return nil, err
	}

	width := seq.Width()
	height := seq.Height()
	barHeight := int(float64(height) * captionBarFraction)
	fontSize := float64(barHeight) * captionFontFraction

	face, err := loadCaptionFace(ctx, fontSize)
	if err != nil {
		return nil, err
	}

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	lines := wrapLines(text, float64(width-captionMarginPx), func(s string) float64 {
		w, _ := measure.MeasureString(s)
		return w
	})

	totalBarHeight := barHeight * len(lines)
	out, err := seq.Map(func(frame image.Image) (image.Image, error) {
		dc := gg.NewContext(width, height+totalBarHeight)
		dc.SetColor(captionBarColor)
		dc.Clear()

		// Original frame sits below the bar stack, composited by alpha.
		draw.Draw(dc.Image().(*image.RGBA), image.Rect(0, totalBarHeight, width, totalBarHeight+height), frame, frame.Bounds().Min, draw.Over)

		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		for i, line := range lines {
			x := float64(width) / 2
			y := float64(i*barHeight) + float64(barHeight)/2
			dc.DrawStringAnchored(line, x, y, 0.5, 0.5)
		}

		return dc.Image(), nil
	})
	if err != nil {
		return nil, err
	}

	return Encode(ctx, out, scope)
}

// wrapLines greedily packs words into lines no wider than maxWidth as
// rendered. A single word wider than maxWidth still gets a line of its
// own; words are never split.
func wrapLines(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	lines := make([]string, 0, 1)
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
