package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajinkya-tambe/FixedIncome/internal/common"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, common.WAP, cfg.Method())
	assert.Equal(t, time.Second, cfg.Driver.SweepInterval)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
accounting:
  method: FIFO
driver:
  sweep_interval: 250ms
journal:
  enabled: true
  in_memory: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, common.FIFO, cfg.Method())
	assert.Equal(t, 250*time.Millisecond, cfg.Driver.SweepInterval)
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoad_RejectsUnknownMethod(t *testing.T) {
	path := writeConfig(t, `
accounting:
  method: HIFO
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, common.ErrUnknownMethod)
}

func TestLoad_RequiresJournalPath(t *testing.T) {
	path := writeConfig(t, `
journal:
  enabled: true
  path: ""
`)

	_, err := Load(path)
	assert.Error(t, err)
}
