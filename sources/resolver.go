package sources

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/util"
	"github.com/utilitybelt/mediakit/util/cleanup"
)

type SpecKind int

const (
	KindURL SpecKind = iota
	KindRawBytes
	KindMessageRef
)

// Spec is the caller-supplied description of where media comes from. A
// MessageRef must be resolved by the front-end into a URL or raw bytes
// before it reaches this package.
type Spec struct {
	Kind     SpecKind
	URL      string
	Data     []byte
	Filename string
	RefID    string
}

func FromURL(url string) Spec {
	return Spec{Kind: KindURL, URL: url}
}

func FromBytes(data []byte, filename string) Spec {
	return Spec{Kind: KindRawBytes, Data: data, Filename: filename}
}

func FromMessageRef(id string) Spec {
	return Spec{Kind: KindMessageRef, RefID: id}
}

// Resolve turns a spec into a tracked artifact. Exactly one file is
// created on success; failures leave nothing behind (the scope discards
// partial writes before the error is returned).
func Resolve(ctx rcontext.RequestContext, spec Spec, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	switch spec.Kind {
	case KindRawBytes:
		return resolveBytes(ctx, spec, scope)
	case KindURL:
		return resolveUrl(ctx, spec, scope)
	case KindMessageRef:
		return nil, fmt.Errorf("reference %s: %w", spec.RefID, common.ErrUnresolvedReference)
	default:
		return nil, fmt.Errorf("unknown source kind %d: %w", spec.Kind, common.ErrUnresolvedReference)
	}
}

func resolveBytes(ctx rcontext.RequestContext, spec Spec, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	ext := strings.TrimPrefix(filepath.Ext(spec.Filename), ".")
	if ext == "" {
		ext = "bin"
	}
	a, err := artifacts.FromBytes(ctx, spec.Data, ext)
	if err != nil {
		return nil, err
	}
	return scope.Track(a), nil
}

func resolveUrl(ctx rcontext.RequestContext, spec Spec, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	ctx.Log.Info("Fetching remote content from " + util.ShortHost(spec.URL))

	client := &http.Client{
		Timeout: time.Duration(ctx.Config.Fetch.TimeoutSeconds) * time.Second,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}

	req, err := http.NewRequestWithContext(ctx.Context, http.MethodGet, spec.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFetchFailed)
	}
	req.Header.Set("User-Agent", ctx.Config.Fetch.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFetchFailed)
	}
	defer cleanup.DumpAndCloseStream(resp.Body)

	if resp.StatusCode != http.StatusOK {
		ctx.Log.Warn("Received status code " + strconv.Itoa(resp.StatusCode))
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, common.ErrFetchFailed)
	}
	if max := ctx.Config.Fetch.MaxSizeBytes; max > 0 && resp.ContentLength > max {
		return nil, fmt.Errorf("%d bytes: %w", resp.ContentLength, common.ErrMediaTooLarge)
	}

	ext := extFromUrl(spec.URL)
	a, err := artifacts.FromReader(ctx, resp.Body, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFetchFailed)
	}

	// Validate before the artifact joins the scope: a failed resolve
	// leaves zero files behind, not a tracked partial.
	f, err := a.Open()
	if err != nil {
		_ = a.Discard()
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFetchFailed)
	}
	contentType, err := util.DetectMimeType(f)
	_ = f.Close()
	if err != nil {
		_ = a.Discard()
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrFetchFailed)
	}
	if !util.IsRasterImage(contentType) {
		_ = a.Discard()
		return nil, fmt.Errorf("%s: %w", contentType, common.ErrUnsupportedFormat)
	}

	return scope.Track(a), nil
}

func extFromUrl(url string) string {
	base := url
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(base)), ".")
	if ext == "" || len(ext) > 5 {
		ext = "img"
	}
	return ext
}
