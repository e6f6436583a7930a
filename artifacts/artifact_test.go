package artifacts

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitybelt/mediakit/common/config"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

func testContext(t *testing.T) rcontext.RequestContext {
	c := config.NewDefaultConfig()
	c.Artifacts.TempDirectory = t.TempDir()
	return rcontext.ForTest(c)
}

func TestFromBytesRoundTrip(t *testing.T) {
	ctx := testContext(t)

	a, err := FromBytes(ctx, []byte("hello world"), "txt")
	require.NoError(t, err)
	assert.Equal(t, int64(11), a.Size)
	assert.Equal(t, "txt", a.Ext)
	assert.True(t, strings.HasPrefix(a.Filename(), ctx.Config.Artifacts.NamePrefix))

	b, err := a.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(b))

	require.NoError(t, a.Discard())

	_, err = os.Stat(a.Path)
	assert.True(t, os.IsNotExist(err))

	// Discard must be safe to repeat
	assert.NoError(t, a.Discard())
}

func TestCreateUsesUniqueNames(t *testing.T) {
	ctx := testContext(t)

	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		a, err := FromBytes(ctx, []byte{0x01}, "bin")
		require.NoError(t, err)
		assert.False(t, seen[a.Path])
		seen[a.Path] = true
	}
}

func TestScopeReleasesEverythingTracked(t *testing.T) {
	ctx := testContext(t)
	scope := NewScope()

	a1, err := FromBytes(ctx, []byte("one"), "bin")
	require.NoError(t, err)
	a2, err := FromBytes(ctx, []byte("two"), "bin")
	require.NoError(t, err)
	scope.Track(a1)
	scope.Track(a2)

	dir, err := os.MkdirTemp(ctx.Config.Artifacts.TempDirectory, "work")
	require.NoError(t, err)
	scope.TrackDir(dir)

	scope.Release(ctx)

	for _, p := range []string{a1.Path, a2.Path, dir} {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "expected %s to be removed", p)
	}
}

func TestScopeDetachSurvivesRelease(t *testing.T) {
	ctx := testContext(t)
	scope := NewScope()

	intermediate, err := FromBytes(ctx, []byte("intermediate"), "bin")
	require.NoError(t, err)
	final, err := FromBytes(ctx, []byte("final"), "bin")
	require.NoError(t, err)
	scope.Track(intermediate)
	scope.Track(final)

	scope.Detach(final)
	scope.Release(ctx)

	_, err = os.Stat(intermediate.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(final.Path)
	assert.NoError(t, err)
}
