package holokin

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBodyParametersOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shoulder_width: 0.5\niterations: 20\n"), 0o644))

	params, err := LoadBodyParameters(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, params.ShoulderWidth, 1e-6)
	assert.Equal(t, 20, params.Iterations)
	// Untouched knobs keep their defaults.
	assert.InDelta(t, DefaultBodyParameters().LowerArmLength, params.LowerArmLength, 1e-6)
}

func TestLoadBodyParametersRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("foot_radius: -1\n"), 0o644))
	_, err := LoadBodyParameters(bad)
	assert.ErrorContains(t, err, "foot_radius")

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte(":\n\t-"), 0o644))
	_, err = LoadBodyParameters(garbage)
	assert.Error(t, err)
}

func TestDefaultBodyParametersValidate(t *testing.T) {
	require.NoError(t, DefaultBodyParameters().Validate())
}

func TestParamsContainerSwap(t *testing.T) {
	first := DefaultBodyParameters()
	c := NewParamsContainer(first)
	assert.Same(t, first, c.Get())

	second := DefaultBodyParameters()
	second.Iterations = 50
	c.Update(second)
	assert.Same(t, second, c.Get())
}

func TestParamsWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("iterations: 10\n"), 0o644))

	container := NewParamsContainer(DefaultBodyParameters())
	watcher := NewParamsWatcher(path, 10*time.Millisecond, container, NewNopLogger())
	watcher.Start()
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("iterations: 42\n"), 0o644))
	// Push the mtime forward so the change is visible regardless of
	// filesystem timestamp granularity.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if container.Get().Iterations == 42 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcher did not pick up the edit, iterations = %d", container.Get().Iterations)
}
