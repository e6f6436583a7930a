package transform

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// loadCaptionFace loads the configured caption font at the given pixel
// size. With no font configured the bundled Go Bold face is used, so the
// captioner works out of the box; a configured-but-missing font is a hard
// failure.
func loadCaptionFace(ctx rcontext.RequestContext, size float64) (font.Face, error) {
	ttf := gobold.TTF
	if fontPath := ctx.Config.Transform.FontPath; fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFontLoad)
		}
		ttf = b
	}

	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFontLoad)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}
