package transform

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

// SpeechBubble composites the bubble overlay over every frame and punches
// the covered region out of the base image. heightTenths is the overlay
// height as tenths of the frame height and must sit in (0, 10];
// validation happens before any image I/O.
//
// The per-frame operation is the literal documented sequence: resize the
// overlay to the frame width and requested height, alpha-composite it
// onto an empty canvas, then channel-subtract that canvas from the frame.
func SpeechBubble(ctx rcontext.RequestContext, a *artifacts.Artifact, heightTenths int, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	if heightTenths <= 0 || heightTenths > 10 {
		return nil, fmt.Errorf("overlay height %d tenths: %w", heightTenths, common.ErrInvalidParameter)
	}

	overlay, err := imaging.Open(ctx.Config.Transform.OverlayPath)
	if err != nil {
		return nil, fmt.Errorf("overlay asset: %s: %w", err.Error(), common.ErrFontLoad)
	}

	seq, err := Decode(ctx, a)
	if err != nil {
		return nil, err
	}

	out, err := seq.Map(func(frame image.Image) (image.Image, error) {
		w := frame.Bounds().Dx()
		h := frame.Bounds().Dy()

		scaled := imaging.Resize(overlay, w, h*heightTenths/10, imaging.Lanczos)

		canvas := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(canvas, scaled.Bounds(), scaled, image.Point{}, draw.Over)

		return subtract(frame, canvas), nil
	})
	if err != nil {
		return nil, err
	}

	return Encode(ctx, out, scope)
}

// subtract computes max(base-top, 0) per channel, alpha included. Where
// the overlay is opaque the result goes transparent, which is what cuts
// the bubble out of the image.
func subtract(base image.Image, top *image.RGBA) *image.RGBA {
	bounds := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			b := rgbaAt(base, bounds.Min.X+x, bounds.Min.Y+y)
			t := top.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: clampSub(b.R, t.R),
				G: clampSub(b.G, t.G),
				B: clampSub(b.B, t.B),
				A: clampSub(b.A, t.A),
			})
		}
	}
	return out
}

func clampSub(a uint8, b uint8) uint8 {
	if a < b {
		return 0
	}
	return a - b
}
