package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/engine"
	"github.com/codex-k8s/scenariosim/internal/logging"
)

// writeSettings writes a scenariosim.yaml with fast playback and returns its path.
func writeSettings(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenariosim.yaml")
	body := "speed: 5ms\nautoStartDelay: 1ms\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(&Options{}, logging.Discard())
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestListCommand(t *testing.T) {
	cfg := writeSettings(t, "")

	out, _, err := run(t, "", "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "FAMILY")
	assert.Contains(t, out, "crashLoopBackOff")
	assert.Contains(t, out, "securityGate")

	out, _, err = run(t, "", "--config", cfg, "list", "--family", "pipeline", "-o", "json")
	require.NoError(t, err)
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.EqualValues(t, "pipeline", e.Family)
	}

	_, _, err = run(t, "", "--config", cfg, "list", "--family", "database")
	assert.Error(t, err)
	_, _, err = run(t, "", "--config", cfg, "list", "-o", "xml")
	assert.Error(t, err)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "list")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClusterShow(t *testing.T) {
	cfg := writeSettings(t, "defaultCluster: crashLoopBackOff\n")

	out, _, err := run(t, "", "--config", cfg, "cluster", "show", "--only", "pods")
	require.NoError(t, err)
	assert.Contains(t, out, "api-6c8d9f-pqrst")
	assert.Contains(t, out, "restarts=7")
	assert.NotContains(t, out, "Control plane")

	out, _, err = run(t, "", "--config", cfg, "cluster", "show", "healthy", "--select", "node/worker-2", "-o", "json")
	require.NoError(t, err)
	var view engine.ClusterView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "healthy", view.Scenario.ID)
	assert.Equal(t, "worker-2", view.Selection.Node)

	_, _, err = run(t, "", "--config", cfg, "cluster", "show", "ghost")
	assert.Error(t, err)
	_, _, err = run(t, "", "--config", cfg, "cluster", "show", "--only", "volumes")
	assert.Error(t, err)
}

func TestClusterFail(t *testing.T) {
	cfg := writeSettings(t, "")

	out, errOut, err := run(t, "", "--config", cfg, "cluster", "fail", "pod/web-7d9c6b-abcde")
	require.NoError(t, err)
	assert.Contains(t, out, "kill pod/web-7d9c6b-abcde: running -> failed")
	assert.Contains(t, out, "Killed")
	assert.Contains(t, errOut, "pod killed")

	out, _, err = run(t, "", "--config", cfg, "cluster", "fail", "crashLoopBackOff", "pod/api-6c8d9f-pqrst", "--failure", "restart", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "before: restarts=7")
	assert.Contains(t, out, "after: restarts=8")
	assert.Contains(t, out, "ref: pod/api-6c8d9f-pqrst")

	_, _, err = run(t, "", "--config", cfg, "cluster", "fail", "service/web")
	assert.Error(t, err)
	_, _, err = run(t, "", "--config", cfg, "cluster", "fail", "node/worker-1", "--failure", "kill")
	assert.Error(t, err)
}

func TestGroupCommands(t *testing.T) {
	cfg := writeSettings(t, "")

	out, _, err := run(t, "", "--config", cfg, "pipeline")
	require.NoError(t, err)
	assert.Contains(t, out, "play")
	assert.Contains(t, out, "show")

	_, _, err = run(t, "", "--config", cfg, "cluster", "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "explode"`)
}

func TestPipelineShow(t *testing.T) {
	cfg := writeSettings(t, "")

	out, _, err := run(t, "", "--config", cfg, "pipeline", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Build and deploy (success)")
	assert.Contains(t, out, "go build ./...")

	out, _, err = run(t, "", "--config", cfg, "pipeline", "show", "testFailure", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: tf-test")
	assert.Contains(t, out, "status: failed")
}

func TestPipelinePlayStopsOnFailure(t *testing.T) {
	cfg := writeSettings(t, "")

	out, errOut, err := run(t, "", "--config", cfg, "pipeline", "play", "testFailure")
	require.NoError(t, err)
	assert.Contains(t, out, "Failing tests (testFailure)")
	assert.Contains(t, out, "stopped-failure")
	assert.Contains(t, errOut, "playback stopped at failed stage tf-test")
}

func TestPipelinePlayCompletes(t *testing.T) {
	cfg := writeSettings(t, "autoStart: false\n")

	out, _, err := run(t, "", "--config", cfg, "pipeline", "play", "success", "--speed", "2ms")
	require.NoError(t, err)
	assert.Contains(t, out, "2ms per stage")
	assert.Contains(t, out, "completed")
}

func TestPipelinePlayEmpty(t *testing.T) {
	cfg := writeSettings(t, "")

	out, _, err := run(t, "", "--config", cfg, "pipeline", "play", "empty")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to play")
}

func TestPipelinePlayInteractive(t *testing.T) {
	cfg := writeSettings(t, "autoStart: false\n")

	out, _, err := run(t, "bogus\nspeed 1ms\nstart\n", "--config", cfg, "pipeline", "play", "securityGate", "-i")
	require.NoError(t, err)
	assert.Contains(t, out, `! unknown command "bogus"`)
	assert.Contains(t, out, "stopped-failure")
}

func TestInteractiveQuitReleasesInput(t *testing.T) {
	e := engine.New(mustCatalog(t), engine.Options{Speed: time.Hour})
	pr, pw := io.Pipe()
	go func() { _, _ = pw.Write([]byte("quit\n")) }()

	var out bytes.Buffer
	err := play(context.Background(), e, playOptions{pipeline: "success", interactive: true, in: pr, out: &out})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := pw.Write([]byte("\n"))
		return errors.Is(err, io.ErrClosedPipe)
	}, time.Second, 5*time.Millisecond, "input is closed once playback returns")
}

func TestApplyCommand(t *testing.T) {
	e := engine.New(mustCatalog(t), engine.Options{Speed: time.Hour})
	require.NoError(t, e.LoadPipeline("success"))

	require.NoError(t, applyCommand(e, "start"))
	require.NoError(t, applyCommand(e, "p"))
	assert.True(t, e.PipelineView().IsPaused)
	require.NoError(t, applyCommand(e, "resume"))
	require.NoError(t, applyCommand(e, "speed 2s"))
	assert.Equal(t, 2*time.Second, e.PipelineView().Speed)
	require.NoError(t, applyCommand(e, "reset"))
	assert.Equal(t, -1, e.PipelineView().ActiveStageIndex)

	assert.ErrorIs(t, applyCommand(e, "q"), errQuit)
	assert.Error(t, applyCommand(e, "speed"))
	assert.Error(t, applyCommand(e, "speed soon"))
	assert.Error(t, applyCommand(e, "pause"))
	e.Unmount()
}

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}
