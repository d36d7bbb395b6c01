package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knolstudy/internal/domain"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "knolstudy.db", "")
	fs.String("log-level", "info", "")
	fs.Bool("ahead", false, "")
	fs.String("deck", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "knolstudy.db", cfg.DB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Study.Ahead)
	assert.Equal(t, "fixed", cfg.Study.DuePolicy)
	assert.Equal(t, "adaptive", cfg.Study.PriorityPolicy)
	assert.Equal(t, "repos", cfg.Library.ReposDir)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knolstudy.yaml")
	yml := "db: file.db\nlog:\n  level: debug\n  format: json\nstudy:\n  due_policy: adaptive\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("KNOLSTUDY_LOG__LEVEL", "warn")
	t.Setenv("KNOLSTUDY_LIBRARY__REPOS_DIR", "/srv/repos")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--ahead", "--deck", "d1"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DB, "unchanged flag must not override the file")
	assert.Equal(t, "warn", cfg.Log.Level, "env overrides file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "adaptive", cfg.Study.DuePolicy)
	assert.Equal(t, "/srv/repos", cfg.Library.ReposDir)
	assert.True(t, cfg.Study.Ahead, "changed flag overrides everything")
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	t.Setenv("KNOLSTUDY_DB", "env.db")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--db", "flag.db"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DB)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: from-env-file.db\n"), 0o644))
	t.Setenv(ConfigEnv, path)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file.db", cfg.DB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	t.Setenv("KNOLSTUDY_STUDY__PRIORITY_POLICY", "fsrs")

	_, err := Load("", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
