package pipeline_deliver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/offload"
)

// DeliverFunc attempts direct delivery of an artifact. It returns
// common.ErrMediaTooLarge when the downstream refuses the artifact for
// size, which routes the pipeline into offloading; any other error is
// fatal.
type DeliverFunc func(ctx rcontext.RequestContext, a *artifacts.Artifact) error

// Outcome reports how the artifact reached the user: directly, or as a
// link with optional expiry.
type Outcome struct {
	Delivered bool
	Link      string
	ExpiresAt time.Time // zero when the link does not expire
}

// Execute runs the two-stage delivery: direct first, then offload to the
// primary backend, then the secondary. This is a designed alternate
// strategy for oversized artifacts, not a retry loop - each stage runs at
// most once.
func Execute(ctx rcontext.RequestContext, a *artifacts.Artifact, deliver DeliverFunc) (*Outcome, error) {
	// Step 1: direct delivery, gated on the configured ceiling so we do
	// not hand the downstream something it will certainly bounce.
	tooLarge := ctx.Config.Delivery.MaxSizeBytes > 0 && a.Size > ctx.Config.Delivery.MaxSizeBytes
	if !tooLarge {
		err := deliver(ctx, a)
		if err == nil {
			return &Outcome{Delivered: true}, nil
		}
		if !errors.Is(err, common.ErrMediaTooLarge) {
			return nil, err
		}
	}
	ctx.Log.Info("Artifact is " + humanize.Bytes(uint64(a.Size)) + ", offloading instead of delivering directly")

	// Step 2: primary backend. A failed Result is an expected outcome
	// here, so it falls through rather than aborting.
	res, err := offload.Upload(ctx, a, offload.Primary)
	if err == nil && !res.Failed {
		expiry := time.Now().Add(time.Duration(ctx.Config.Offload.RetentionHours) * time.Hour)
		return &Outcome{Link: res.Link, ExpiresAt: expiry}, nil
	}
	if err != nil {
		ctx.Log.Warn("Primary offload failed: " + err.Error())
	} else {
		ctx.Log.Warn("Primary offload rejected: " + res.Reason)
	}

	// Step 3: secondary backend, single attempt.
	res, err = offload.Upload(ctx, a, offload.Secondary)
	if err == nil && !res.Failed {
		return &Outcome{Link: res.Link}, nil
	}
	if err != nil {
		ctx.Log.Warn("Secondary offload failed: " + err.Error())
	}

	return nil, common.ErrUploadFailed
}

// DeliverToDir returns a DeliverFunc that copies the artifact into dir,
// preserving its name. Used by the command front-end as its direct
// delivery target.
func DeliverToDir(dir string) DeliverFunc {
	return func(ctx rcontext.RequestContext, a *artifacts.Artifact) error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		src, err := a.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := os.Create(filepath.Join(dir, a.Filename()))
		if err != nil {
			return err
		}
		if _, err = io.Copy(dst, src); err != nil {
			_ = dst.Close()
			return fmt.Errorf("copying artifact: %w", err)
		}
		return dst.Close()
	}
}
