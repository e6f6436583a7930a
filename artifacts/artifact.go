package artifacts

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/util"
)

// Artifact is a transient media file on local storage. It exists for as
// long as the owning request holds it; the owning request removes it on
// its sole exit path, success or failure.
type Artifact struct {
	Path           string
	Size           int64
	Ext            string
	Animated       bool
	FrameCount     int
	FrameDurations []int // milliseconds, per frame; empty when not animated
}

// Create makes a new uniquely-named file under the configured temp
// directory and returns it open for writing. Callers must Seal the handle
// before handing the artifact to a consumer.
func Create(ctx rcontext.RequestContext, ext string) (*Artifact, *os.File, error) {
	name, err := util.GenerateRandomString(16)
	if err != nil {
		return nil, nil, err
	}

	ext = strings.TrimPrefix(ext, ".")
	dir := ctx.Config.Artifacts.TempDirectory
	if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}

	fpath := path.Join(dir, ctx.Config.Artifacts.NamePrefix+name+"."+ext)
	f, err := os.OpenFile(fpath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return nil, nil, err
	}

	return &Artifact{Path: fpath, Ext: ext}, f, nil
}

// Seal records the final size and resets the handle so the next consumer
// observes a fully-written file from the start.
func (a *Artifact) Seal(f *os.File) error {
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	a.Size = info.Size()
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FromBytes writes b verbatim to a new artifact.
func FromBytes(ctx rcontext.RequestContext, b []byte, ext string) (*Artifact, error) {
	a, f, err := Create(ctx, ext)
	if err != nil {
		return nil, err
	}
	if _, err = f.Write(b); err != nil {
		_ = f.Close()
		_ = a.Discard()
		return nil, err
	}
	if err = a.Seal(f); err != nil {
		_ = a.Discard()
		return nil, err
	}
	return a, nil
}

// FromReader streams r to a new artifact.
func FromReader(ctx rcontext.RequestContext, r io.Reader, ext string) (*Artifact, error) {
	a, f, err := Create(ctx, ext)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = a.Discard()
		return nil, err
	}
	if err = a.Seal(f); err != nil {
		_ = a.Discard()
		return nil, err
	}
	return a, nil
}

// Adopt wraps a file written by an external engine into an artifact.
func Adopt(fpath string) (*Artifact, error) {
	info, err := os.Stat(fpath)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(filepath.Ext(fpath), ".")
	return &Artifact{Path: fpath, Size: info.Size(), Ext: ext}, nil
}

// Open returns a read handle positioned at the start of the file.
func (a *Artifact) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// ReadAll slurps the artifact contents.
func (a *Artifact) ReadAll() ([]byte, error) {
	return os.ReadFile(a.Path)
}

// Discard removes the backing file. Safe to call more than once.
func (a *Artifact) Discard() error {
	if a == nil || a.Path == "" {
		return nil
	}
	err := os.Remove(a.Path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Filename is the base name of the backing file.
func (a *Artifact) Filename() string {
	return filepath.Base(a.Path)
}
