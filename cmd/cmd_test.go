package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/sketchquiz/internal/resultlog"
	"github.com/abhisek/sketchquiz/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "SKETCHQUIZ_") {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func sampleSessions() []store.SessionSummary {
	return []store.SessionSummary{{
		SessionID:    "s1",
		Action:       store.ActionEnd,
		Timestamp:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Queue:        []string{"cat", "tree"},
		Questions:    2,
		Correct:      1,
		Incorrect:    1,
		DurationSecs: 75,
	}}
}

func TestWriteStats_Table(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeStats(&b, sampleSessions(), "table"))
	assert.Contains(t, b.String(), "ACCURACY")
	assert.Contains(t, b.String(), "50%")
	assert.Contains(t, b.String(), "1:15")
}

func TestWriteStats_Empty(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeStats(&b, nil, "table"))
	assert.Contains(t, b.String(), "No games")

	b.Reset()
	require.NoError(t, writeStats(&b, nil, "json"))
	assert.Equal(t, "[]\n", b.String())
}

func TestWriteStats_JSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeStats(&b, sampleSessions(), "json"))

	var got []store.SessionSummary
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
}

func TestWriteStats_YAML(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeStats(&b, sampleSessions(), "yaml"))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0]["session_id"])
	assert.Equal(t, 1, got[0]["correct"])
}

func TestVerdictCommand_AppendsLine(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")

	out, err := execute(t, "verdict", "--workspace", ws, "--image", "cat.png", "--predicted", "cat", "--confidence", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "ImageFile: cat.png")

	lines, err := resultlog.Read(filepath.Join(ws, "result.txt"))
	require.NoError(t, err)
	require.Len(t, lines.Complete, 1)
	assert.Empty(t, lines.Tail)

	rec, err := resultlog.Parse(lines.Complete[0])
	require.NoError(t, err)
	assert.True(t, rec.Correct)
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
}

func TestVerdictCommand_MovesDrawingToAnnotated(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "images", "tree.png"), []byte("png"), 0o644))

	out, err := execute(t, "verdict", "--workspace", ws, "--image", "tree.png", "--predicted", "broom", "--wrong")
	require.NoError(t, err)
	assert.Contains(t, out, "moved drawing to")

	assert.NoFileExists(t, filepath.Join(ws, "images", "tree.png"))
	data, err := os.ReadFile(filepath.Join(ws, "resultfile", "tree.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestResetCommand_ClearsWorkspace(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "images", "cat.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "result.txt"), []byte("line\n"), 0o644))

	_, err := execute(t, "reset", "--workspace", ws)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(ws, "images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	data, err := os.ReadFile(filepath.Join(ws, "result.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sketchquiz")
}
