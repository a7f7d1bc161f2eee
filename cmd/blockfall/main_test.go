package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/ledger"
	"github.com/vovakirdan/blockfall/internal/storage"
)

func withFlags(t *testing.T, dataDir, configPath string, fps int) {
	t.Helper()
	oldDir, oldCfg, oldFPS := flagDataDir, flagConfig, flagFPS
	flagDataDir, flagConfig, flagFPS = dataDir, configPath, fps
	t.Cleanup(func() {
		flagDataDir, flagConfig, flagFPS = oldDir, oldCfg, oldFPS
	})
}

func TestSetupCreatesDataDirAndLog(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "tuning.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("timing:\n  fps: 30\n"), 0o600))

	dir := filepath.Join(root, "data")
	withFlags(t, dir, cfgPath, 0)

	e, err := setup()
	require.NoError(t, err)
	defer e.close()

	assert.Equal(t, dir, e.dataDir)
	assert.Equal(t, 30, e.settings.Timing.FPS)
	e.log.Info("hello")
	_, err = os.Stat(filepath.Join(dir, "blockfall.log"))
	assert.NoError(t, err)

	h := e.openHistory()
	require.NotNil(t, h)
	assert.NoError(t, h.Close())
}

func TestSetupFPSFlagWins(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "tuning.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("timing:\n  fps: 30\n"), 0o600))
	withFlags(t, root, cfgPath, 90)

	e, err := setup()
	require.NoError(t, err)
	defer e.close()
	assert.Equal(t, 90, e.settings.Timing.FPS)
}

func TestSetupBadConfigFails(t *testing.T) {
	withFlags(t, t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"), 0)
	_, err := setup()
	assert.Error(t, err)
}

func TestRecordTable(t *testing.T) {
	tb := ledger.DefaultTable()
	tb[0] = ledger.Record{Name: "carol", Level: 4, Score: 321}

	out := recordTable(tb)
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "321")
	assert.Contains(t, out, ledger.DefaultName)
}

func TestHistoryTable(t *testing.T) {
	out := historyTable([]storage.GameRecord{
		{BlockTypes: 6, Level: 2, Score: 150, Lines: 7, Figures: 40, Duration: 95 * time.Second, PlayedAt: time.Now()},
	})
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "1m35s")
	assert.Contains(t, out, "-", "unranked games show no player")
}
