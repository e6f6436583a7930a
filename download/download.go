package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/pool"
	"github.com/utilitybelt/mediakit/util"
)

type result struct {
	artifact *artifacts.Artifact
	err      error
}

// Execute resolves a download request into a tracked artifact. The
// extraction itself is long-running and blocking, so it is handed to the
// download queue and awaited here; sibling requests keep scheduling while
// the engine works. Failures are terminal - the caller decides whether to
// retry the whole request.
func Execute(ctx rcontext.RequestContext, req Request, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	req = req.normalize()
	ctx = ctx.LogWithFields(logrus.Fields{
		"source": util.ShortHost(req.URL),
		"mode":   string(req.Mode),
	})

	workDir, err := os.MkdirTemp(ctx.Config.Artifacts.TempDirectory, ctx.Config.Artifacts.NamePrefix+"dl")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrExtractionFailed)
	}
	scope.TrackDir(workDir)

	timeout := time.Duration(ctx.Config.Downloads.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx.Context, timeout)
	defer cancel()
	ctx = ctx.WithContext(runCtx)

	ch := make(chan result, 1)
	run := func() {
		fpath, runErr := runEngine(ctx, req, workDir)
		if runErr != nil {
			ch <- result{err: runErr}
			return
		}
		fpath, runErr = normalizeName(fpath)
		if runErr != nil {
			ch <- result{err: fmt.Errorf("%s: %w", runErr.Error(), common.ErrExtractionFailed)}
			return
		}
		a, adoptErr := artifacts.Adopt(fpath)
		if adoptErr != nil {
			ch <- result{err: fmt.Errorf("%s: %w", adoptErr.Error(), common.ErrExtractionFailed)}
			return
		}
		ch <- result{artifact: a}
	}

	if pool.DownloadQueue != nil {
		if err = pool.DownloadQueue.Schedule(run); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrExtractionFailed)
		}
	} else {
		// No queue configured (library use); run on a plain goroutine.
		go run()
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		scope.Track(res.artifact)
		ctx.Log.Info("Downloaded " + res.artifact.Filename() + " (" + humanize.Bytes(uint64(res.artifact.Size)) + ")")
		return res.artifact, nil
	case <-runCtx.Done():
		return nil, fmt.Errorf("%s: %w", runCtx.Err().Error(), common.ErrDownloadInterrupted)
	}
}

// titleByteBudget caps metadata-derived filenames. The engine applies the
// same budget via its output template; this enforces it even when the
// engine's own naming misbehaves.
const titleByteBudget = 150

// normalizeName sanitizes and byte-caps the engine-derived filename
// without splitting a multi-byte character, renaming the file in place.
func normalizeName(fpath string) (string, error) {
	base := filepath.Base(fpath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	tidy := util.SanitizeFilename(util.TruncateToBytes(stem, titleByteBudget)) + ext
	if tidy == base {
		return fpath, nil
	}

	renamed := filepath.Join(filepath.Dir(fpath), tidy)
	if err := os.Rename(fpath, renamed); err != nil {
		return "", err
	}
	return renamed, nil
}
