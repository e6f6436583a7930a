package transform

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"

	"github.com/disintegration/imaging"
	"github.com/kettek/apng"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/util"
)

// DefaultFrameDurationMs is used when the source container carries no
// per-frame timing.
const DefaultFrameDurationMs = 100

// Sequence is the polymorphic frame container every transform operates
// on: a still image is a one-frame sequence, an animation is the fully
// composited frame list with its original timing. Transforms apply one
// per-frame function uniformly and reassemble, so still and animated
// inputs share a single code path.
type Sequence struct {
	Frames    []image.Image
	Durations []int // milliseconds, parallel to Frames
	Animated  bool
}

func (s *Sequence) Width() int {
	return s.Frames[0].Bounds().Dx()
}

func (s *Sequence) Height() int {
	return s.Frames[0].Bounds().Dy()
}

// Map applies fn to every frame, returning a new sequence with identical
// timing.
func (s *Sequence) Map(fn func(frame image.Image) (image.Image, error)) (*Sequence, error) {
	out := &Sequence{
		Frames:    make([]image.Image, 0, len(s.Frames)),
		Durations: append([]int(nil), s.Durations...),
		Animated:  s.Animated,
	}
	for _, frame := range s.Frames {
		mapped, err := fn(frame)
		if err != nil {
			return nil, err
		}
		out.Frames = append(out.Frames, mapped)
	}
	return out, nil
}

// Decode reads an artifact into a sequence. GIF and animated PNG inputs
// are composited frame by frame so every element of Frames is a complete
// image regardless of the container's disposal tricks.
func Decode(ctx rcontext.RequestContext, a *artifacts.Artifact) (*Sequence, error) {
	b, err := a.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrDecodeFailed)
	}

	contentType, err := util.DetectMimeType(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrDecodeFailed)
	}

	switch {
	case contentType == "image/gif":
		return decodeGif(b)
	case contentType == "image/png" && util.IsAnimatedPNG(b):
		return decodeApng(b)
	default:
		img, err := imaging.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrDecodeFailed)
		}
		return &Sequence{
			Frames:    []image.Image{img},
			Durations: []int{DefaultFrameDurationMs},
			Animated:  false,
		}, nil
	}
}

func decodeGif(b []byte) (*Sequence, error) {
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("gif: %s: %w", err.Error(), common.ErrDecodeFailed)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif: no frames: %w", common.ErrDecodeFailed)
	}

	// Swap space for compositing partial frames onto: a frame may only
	// cover a sub-rectangle of the canvas.
	frameImg := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))

	seq := &Sequence{Animated: len(g.Image) > 1}
	for i, img := range g.Image {
		var disposal byte
		if g.Disposal != nil {
			disposal = g.Disposal[i]
		}

		draw.Draw(frameImg, img.Bounds(), img, img.Bounds().Min, draw.Over)

		full := image.NewRGBA(frameImg.Bounds())
		draw.Draw(full, full.Bounds(), frameImg, image.Point{}, draw.Src)
		seq.Frames = append(seq.Frames, full)

		durationMs := 0
		if i < len(g.Delay) {
			durationMs = g.Delay[i] * 10
		}
		if durationMs <= 0 {
			durationMs = DefaultFrameDurationMs
		}
		seq.Durations = append(seq.Durations, durationMs)

		if disposal == gif.DisposalBackground || disposal == gif.DisposalPrevious {
			draw.Draw(frameImg, frameImg.Bounds(), image.Transparent, image.Point{}, draw.Src)
		}
	}
	return seq, nil
}

func decodeApng(b []byte) (*Sequence, error) {
	p, err := apng.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("apng: %s: %w", err.Error(), common.ErrDecodeFailed)
	}
	if len(p.Frames) == 0 {
		return nil, fmt.Errorf("apng: no frames: %w", common.ErrDecodeFailed)
	}

	frameImg := image.NewRGBA(p.Frames[0].Image.Bounds())

	seq := &Sequence{Animated: len(p.Frames) > 1}
	for _, frame := range p.Frames {
		if frame.DisposeOp == apng.DISPOSE_OP_BACKGROUND {
			draw.Draw(frameImg, frameImg.Bounds(), image.Transparent, image.Point{}, draw.Src)
		}

		op := draw.Over
		if frame.BlendOp == apng.BLEND_OP_SOURCE {
			op = draw.Src
		}
		offset := image.Pt(frame.XOffset, frame.YOffset)
		draw.Draw(frameImg, frame.Image.Bounds().Add(offset), frame.Image, image.Point{}, op)

		full := image.NewRGBA(frameImg.Bounds())
		draw.Draw(full, full.Bounds(), frameImg, image.Point{}, draw.Src)
		seq.Frames = append(seq.Frames, full)
		seq.Durations = append(seq.Durations, apngDelayMs(frame))
	}
	return seq, nil
}

func apngDelayMs(f apng.Frame) int {
	den := f.DelayDenominator
	if den == 0 {
		den = 100 // per the APNG spec
	}
	ms := int(f.DelayNumerator) * 1000 / int(den)
	if ms <= 0 {
		ms = DefaultFrameDurationMs
	}
	return ms
}
