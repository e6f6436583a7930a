package artifacts

import (
	"os"

	"github.com/utilitybelt/mediakit/common/rcontext"
)

// Scope collects every artifact and working directory a request creates so
// they can all be released on the request's single exit path. Superseded
// intermediates stay tracked; only an explicitly detached artifact
// survives release.
type Scope struct {
	tracked []*Artifact
	dirs    []string
}

func NewScope() *Scope {
	return &Scope{}
}

// Track registers a for release and returns it for chaining.
func (s *Scope) Track(a *Artifact) *Artifact {
	if a != nil {
		s.tracked = append(s.tracked, a)
	}
	return a
}

// TrackDir registers a working directory for removal on release.
func (s *Scope) TrackDir(dir string) string {
	if dir != "" {
		s.dirs = append(s.dirs, dir)
	}
	return dir
}

// Detach removes a from the scope so Release leaves it alone. Used when a
// finished artifact is handed to the caller.
func (s *Scope) Detach(a *Artifact) *Artifact {
	for i, t := range s.tracked {
		if t == a {
			s.tracked = append(s.tracked[:i], s.tracked[i+1:]...)
			break
		}
	}
	return a
}

// Release discards every tracked artifact and removes tracked working
// directories. Failures are logged, not returned: cleanup runs on error
// paths where the primary error has already been decided.
func (s *Scope) Release(ctx rcontext.RequestContext) {
	for _, a := range s.tracked {
		if err := a.Discard(); err != nil {
			ctx.Log.Warn("Failed to remove artifact " + a.Path + ": " + err.Error())
		}
	}
	s.tracked = nil
	for _, d := range s.dirs {
		if err := os.RemoveAll(d); err != nil {
			ctx.Log.Warn("Failed to remove working directory " + d + ": " + err.Error())
		}
	}
	s.dirs = nil
}
