package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/doit/internal/config"
	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/store"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir: dir,
		Storage: config.StorageConfig{Backend: backend, Key: "@todo_projects"},
		Logger: config.LoggerConfig{
			Level:    "debug",
			Encoding: "json",
			File:     filepath.Join(dir, "doit.log"),
		},
	}
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func seed(t *testing.T, s *session) {
	t.Helper()
	s.load(context.Background())
	p, err := s.store.AddProject("Launch", "ship it", models.PriorityHigh)
	require.NoError(t, err)
	a, err := s.store.AddTask(p.ID, "A")
	require.NoError(t, err)
	_, err = s.store.AddTask(p.ID, "B")
	require.NoError(t, err)
	require.NoError(t, s.store.ToggleTaskComplete(p.ID, a.ID))
	_, err = s.store.AddProject("Empty", "", "")
	require.NoError(t, err)
}

func TestExportRoundTripsAcrossSessions(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)

			s, err := newSession(cfg)
			require.NoError(t, err)
			seed(t, s)
			s.close()

			s, err = newSession(cfg)
			require.NoError(t, err)
			defer s.close()

			cmd, out := testCmd()
			require.NoError(t, runExport(cmd, s, false))

			var got []models.Project
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			require.Len(t, got, 2)
			assert.Equal(t, "Launch", got[0].Title)
			assert.Equal(t, models.StatusInProgress, got[0].Status)
			require.Len(t, got[0].Tasks, 2)
			assert.True(t, got[0].Tasks[0].Completed)
			assert.Equal(t, got[0].ID, got[0].Tasks[1].ProjectID)
		})
	}
}

func TestExportEmptyStore(t *testing.T) {
	s, err := newSession(testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer s.close()

	cmd, out := testCmd()
	require.NoError(t, runExport(cmd, s, true))
	assert.Equal(t, "[]\n", out.String())
}

func TestStatsPlain(t *testing.T) {
	s, err := newSession(testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer s.close()
	seed(t, s)

	cmd, out := testCmd()
	require.NoError(t, runStats(cmd, s, true))

	text := out.String()
	assert.Contains(t, text, "Projects:  2 (0 completed, 2 active)")
	assert.Contains(t, text, "Tasks:     2 (1 completed, 1 pending)")
	assert.Contains(t, text, "Task completion:    50%")
	assert.Contains(t, text, "Project completion: 0%")
	assert.Contains(t, text, "  high     1\n")
	assert.Contains(t, text, "  medium   1\n")
	assert.Contains(t, text, "  low      0\n")
}

func TestStatsKeepsUnsavedChanges(t *testing.T) {
	s, err := newSession(testConfig(t, config.BackendSQLite))
	require.NoError(t, err)
	defer s.close()
	seed(t, s)

	cmd, out := testCmd()
	require.NoError(t, runStats(cmd, s, true))
	require.NoError(t, runStats(cmd, s, true))

	assert.Len(t, s.store.Snapshot().Projects, 2)
	assert.NotContains(t, out.String(), "Projects:  0")
}

func TestAddCommand(t *testing.T) {
	s, err := newSession(testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer s.close()

	cmd, out := testCmd()
	require.NoError(t, runAdd(cmd, s, "  Launch ", "ship it", "HIGH"))
	assert.Contains(t, out.String(), `Created project "Launch"`)

	projects := s.store.Snapshot().Projects
	require.Len(t, projects, 1)
	assert.Equal(t, "Launch", projects[0].Title)
	assert.Equal(t, "ship it", projects[0].Description)
	assert.Equal(t, models.PriorityHigh, projects[0].Priority)

	_, ok, err := s.storage.Get(context.Background(), s.cfg.Storage.Key)
	require.NoError(t, err)
	assert.True(t, ok, "add should flush before returning")
}

func TestAddCommandValidation(t *testing.T) {
	s, err := newSession(testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer s.close()

	cmd, _ := testCmd()
	assert.Error(t, runAdd(cmd, s, "Launch", "", "urgent"))
	assert.ErrorIs(t, runAdd(cmd, s, "   ", "", ""), store.ErrEmptyTitle)
	assert.Empty(t, s.store.Snapshot().Projects)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd(BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "doit 1.2.3 (commit: abc, built: today)\n", out.String())
}

func TestOpenStorageRejectsBadPath(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	blocker := filepath.Join(cfg.DataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.DataDir = blocker

	_, _, err := openStorage(cfg)
	assert.Error(t, err)
}
