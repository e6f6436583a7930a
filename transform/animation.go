package transform

import (
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

// ToAnimation wraps the input in an animation container. A still image
// becomes a one-frame looping GIF; an already-animated input is
// re-encoded as-is with its timing intact.
func ToAnimation(ctx rcontext.RequestContext, a *artifacts.Artifact, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	seq, err := Decode(ctx, a)
	if err != nil {
		return nil, err
	}
	seq.Animated = true
	return Encode(ctx, seq, scope)
}
