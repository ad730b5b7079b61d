package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLaterWins(t *testing.T) {
	got := Merge(Vars{"A": "1", "B": "1"}, nil, Vars{"B": "2"})
	assert.Equal(t, Vars{"A": "1", "B": "2"}, got)
}

func TestLookupIgnoresBlank(t *testing.T) {
	v := Vars{"SET": "x", "BLANK": "  "}

	got, ok := v.Lookup("SET")
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	_, ok = v.Lookup("BLANK")
	assert.False(t, ok)
	_, ok = v.Lookup("MISSING")
	assert.False(t, ok)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.env"), []byte("SCENARIOSIM_SPEED=2s\nSCENARIOSIM_LOG_LEVEL=debug\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.env"), []byte("# override\nSCENARIOSIM_SPEED=\"750ms\"\n"), 0o600))

	vars, err := LoadEnvFiles(dir, []string{"base.env", "", "local.env"})
	require.NoError(t, err)
	assert.Equal(t, "750ms", vars["SCENARIOSIM_SPEED"])
	assert.Equal(t, "debug", vars["SCENARIOSIM_LOG_LEVEL"])
}

func TestLoadEnvFilesMissing(t *testing.T) {
	_, err := LoadEnvFiles(t.TempDir(), []string{"nope.env"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromOS(t *testing.T) {
	t.Setenv("SCENARIOSIM_TEST_VAR", "a=b")
	assert.Equal(t, "a=b", FromOS()["SCENARIOSIM_TEST_VAR"])
}
