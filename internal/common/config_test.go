package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.Pipeline.BatchSize)
	assert.Equal(t, 1, cfg.Pipeline.IdentityPage)
	assert.True(t, cfg.Pipeline.Manifest)
	assert.Equal(t, "pdftotext", cfg.OCR.Pdftotext)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FORMBATCH_STATE_DIR", "/data/state")
	t.Setenv("FORMBATCH_BATCH_SIZE", "12")
	t.Setenv("FORMBATCH_MANIFEST", "false")
	t.Setenv("FORMBATCH_OCR_TIMEOUT", "5s")
	t.Setenv("FORMBATCH_IDENTITY_PAGE", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "/data/state", cfg.Paths.StateDir)
	assert.Equal(t, 12, cfg.Pipeline.BatchSize)
	assert.False(t, cfg.Pipeline.Manifest)
	assert.Equal(t, 5*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 1, cfg.Pipeline.IdentityPage)
}

func TestResolve_DerivesSiblingPaths(t *testing.T) {
	cfg := LoadConfig()
	cfg.Paths.StateDir = filepath.Join("data", "state")
	cfg.Paths.OrderFile = "/elsewhere/order.xlsx"
	cfg.Resolve()

	assert.Equal(t, filepath.Join("data", "ignore.xlsx"), cfg.Paths.IgnoreFile)
	assert.Equal(t, "/elsewhere/order.xlsx", cfg.Paths.OrderFile)
	assert.Equal(t, filepath.Join("data", "combined"), cfg.Paths.CombinedDir)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	err := cfg.Validate(StageAll)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "state_dir")
	assert.Contains(t, err.Error(), "company_dir")

	cfg.Paths.StateDir = "/data/state"
	cfg.Resolve()
	assert.NoError(t, cfg.Validate(StageCombine))

	cfg.Paths.CombinedDir = "/data/state/"
	err = cfg.Validate(StageCombine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ from state_dir")

	cfg.Paths.CombinedDir = "/data/out"
	cfg.Pipeline.BatchSize = 0
	assert.Error(t, cfg.Validate(StageCombine))
	assert.NoError(t, cfg.Validate(StageRename), "batch size is not checked for rename")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formbatch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"state_dir": "/srv/state",
		"batch_size": 5,
		"manifest": false,
		"ocr_timeout": "2s",
		"log_level": "debug"
	}`), 0o644))

	cfg := LoadConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "/srv/state", cfg.Paths.StateDir)
	assert.Equal(t, 5, cfg.Pipeline.BatchSize)
	assert.False(t, cfg.Pipeline.Manifest)
	assert.Equal(t, 2*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pdftotext", cfg.OCR.Pdftotext)
}

func TestLoadFile_RejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key":   `{"stat_dir": "/x"}`,
		"zero batch":    `{"batch_size": 0}`,
		"wrong type":    `{"manifest": "yes"}`,
		"bad level":     `{"log_level": "verbose"}`,
		"not an object": `[1, 2]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "c.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			err := LoadConfig().LoadFile(path)
			require.Error(t, err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, CodeConfig, appErr.Code)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadConfig().LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("Debug").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "INFO", ParseLevel("").String())
}
