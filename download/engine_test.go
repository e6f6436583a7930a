package download

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/config"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

// fakeEngine writes a shell script standing in for the extraction binary.
func fakeEngine(t *testing.T, script string) string {
	if runtime.GOOS == "windows" {
		t.Skip("fake engine scripts need a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "fake-engine")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0755))
	return p
}

func engineContext(t *testing.T, binary string) rcontext.RequestContext {
	c := config.NewDefaultConfig()
	c.Artifacts.TempDirectory = t.TempDir()
	c.Downloads.BinaryPath = binary
	c.Downloads.TimeoutSeconds = 10
	return rcontext.ForTest(c)
}

func TestExecuteAdoptsEngineOutput(t *testing.T) {
	// The fake engine finds the output template argument (it follows
	// "--output"), writes a file next to it, and reports metadata on
	// stdout the way the real engine does with --print-json.
	script := `
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output" ]; then out="$arg"; fi
  prev="$arg"
done
dir=$(dirname "$out")
printf 'media' > "$dir/uploader - title.mp4"
printf '{"uploader":"uploader","title":"title","ext":"mp4","_filename":"%s/uploader - title.mp4"}\n' "$dir"
`
	ctx := engineContext(t, fakeEngine(t, script))
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	a, err := Execute(ctx, Request{URL: "https://example.org/v"}, scope)
	require.NoError(t, err)
	assert.Equal(t, "uploader - title.mp4", a.Filename())
	assert.Equal(t, int64(5), a.Size)
	assert.Equal(t, "mp4", a.Ext)
}

func TestExecuteReportsExtractionFailure(t *testing.T) {
	ctx := engineContext(t, fakeEngine(t, `echo "ERROR: unsupported url" >&2; exit 1`))
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	_, err := Execute(ctx, Request{URL: "https://example.org/v"}, scope)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "unsupported url")
}

func TestExecuteFlagsPartialTransfers(t *testing.T) {
	script := `
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output" ]; then out="$arg"; fi
  prev="$arg"
done
dir=$(dirname "$out")
printf 'partial' > "$dir/video.mp4.part"
`
	ctx := engineContext(t, fakeEngine(t, script))
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	_, err := Execute(ctx, Request{URL: "https://example.org/v"}, scope)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDownloadInterrupted)
}

func TestExecuteCleansWorkDirOnRelease(t *testing.T) {
	ctx := engineContext(t, fakeEngine(t, `echo fail >&2; exit 1`))
	scope := artifacts.NewScope()

	_, err := Execute(ctx, Request{URL: "https://example.org/v"}, scope)
	require.Error(t, err)
	scope.Release(ctx)

	entries, err := os.ReadDir(ctx.Config.Artifacts.TempDirectory)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormalizeNameAppliesTitleBudget(t *testing.T) {
	dir := t.TempDir()
	longStem := strings.Repeat("日", 60) // 180 bytes of 3-byte runes
	orig := filepath.Join(dir, longStem+".mp4")
	require.NoError(t, os.WriteFile(orig, []byte("media"), 0640))

	renamed, err := normalizeName(orig)
	require.NoError(t, err)

	base := filepath.Base(renamed)
	stem := strings.TrimSuffix(base, ".mp4")
	assert.LessOrEqual(t, len(stem), 150)
	assert.True(t, utf8.ValidString(stem), "truncation must not split a rune")
	assert.Zero(t, len(stem)%3, "every kept rune is 3 bytes")

	_, err = os.Stat(renamed)
	assert.NoError(t, err)
	_, err = os.Stat(orig)
	assert.True(t, os.IsNotExist(err))
}
