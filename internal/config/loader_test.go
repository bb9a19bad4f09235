package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// isolatedLoader points every layer into a temp dir.
func isolatedLoader(t *testing.T) (Loader, string) {
	t.Helper()
	root := t.TempDir()
	return Loader{
		SystemPath:  filepath.Join(root, "etc", ConfigFileName),
		UserPath:    filepath.Join(root, "home", ConfigFileName),
		ProjectPath: "",
		Env:         noEnv,
	}, root
}

func TestLoader_DefaultsOnly(t *testing.T) {
	l, root := isolatedLoader(t)
	t.Chdir(root)

	tc, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), tc.Config)
	assert.Equal(t, SourceDefault, tc.GetSource("storage.driver"))
	assert.Empty(t, tc.Sources)
}

func TestLoader_Layering(t *testing.T) {
	l, root := isolatedLoader(t)
	writeConfig(t, filepath.Join(root, "etc"), `
storage:
  driver: sqlite
log:
  level: info
`)
	writeConfig(t, filepath.Join(root, "home"), `
storage:
  driver: memory
view:
  upcoming_limit: 6
`)
	project := writeConfig(t, filepath.Join(root, "proj"), `
view:
  sort_by: deadline
`)
	l.ProjectPath = project
	l.Env = envMap(map[string]string{"TASKDECK_UPCOMING_LIMIT": "9"})

	tc, err := l.Load()
	require.NoError(t, err)

	cfg := tc.Config
	assert.Equal(t, DriverMemory, cfg.Storage.Driver, "user beats system")
	assert.Equal(t, "info", cfg.Log.Level, "system value survives when not overridden")
	assert.Equal(t, "deadline", cfg.View.SortBy)
	assert.Equal(t, 9, cfg.View.UpcomingLimit, "env beats user file")
	assert.Equal(t, "desc", cfg.View.SortDirection)

	assert.Equal(t, SourceUser, tc.GetSource("storage.driver"))
	assert.Equal(t, SourceSystem, tc.GetSource("log.level"))
	assert.Equal(t, SourceProject, tc.GetSource("view.sort_by"))
	assert.Equal(t, SourceEnv, tc.GetSource("view.upcoming_limit"))
	assert.Equal(t, SourceDefault, tc.GetSource("auth.username"))

	assert.Equal(t, project, tc.GetTrackedSource("view.sort_by").Path)
	assert.Equal(t, "TASKDECK_UPCOMING_LIMIT", tc.GetTrackedSource("view.upcoming_limit").Path)
}

func TestLoader_ProjectDirDiscovery(t *testing.T) {
	l, root := isolatedLoader(t)
	writeConfig(t, filepath.Join(root, DeckDir), "storage:\n  driver: memory\n")
	t.Chdir(root)

	tc, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, tc.Config.Storage.Driver)
	assert.Equal(t, filepath.Join(DeckDir, ConfigFileName), tc.GetTrackedSource("storage.driver").Path)
}

func TestLoader_ExplicitConfigMissing(t *testing.T) {
	l, root := isolatedLoader(t)
	l.ProjectPath = filepath.Join(root, "nope.yaml")

	_, err := l.Load()
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoader_ProjectParseErrorIsFatal(t *testing.T) {
	l, root := isolatedLoader(t)
	l.ProjectPath = writeConfig(t, root, "storage: [")

	_, err := l.Load()
	assert.Error(t, err)
}

func TestLoader_UserParseErrorIsSkipped(t *testing.T) {
	l, root := isolatedLoader(t)
	writeConfig(t, filepath.Join(root, "home"), "storage: [")
	t.Chdir(root)

	tc, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, DriverFile, tc.Config.Storage.Driver)
}

func TestLoader_UnknownKeysNotTracked(t *testing.T) {
	l, root := isolatedLoader(t)
	l.ProjectPath = writeConfig(t, root, "bogus: 1\nstorage:\n  nope: x\n  key: other.data\n")

	tc, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "other.data", tc.Config.Storage.Key)
	assert.NotContains(t, tc.Sources, "bogus")
	assert.NotContains(t, tc.Sources, "storage.nope")
	assert.Contains(t, tc.Sources, "storage.key")
}

func TestApplyEnvVars(t *testing.T) {
	tc := NewTrackedConfig()
	overridden, err := ApplyEnvVars(tc, envMap(map[string]string{
		"TASKDECK_STORAGE":       "s3",
		"TASKDECK_S3_BUCKET":     "deck",
		"TASKDECK_S3_PATH_STYLE": "yes",
		"TASKDECK_PASSWORD":      "hunter2",
		"TASKDECK_LOG_LEVEL":     "",
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"storage.driver", "storage.s3.bucket", "storage.s3.path_style", "auth.password",
	}, overridden)
	assert.Equal(t, DriverS3, tc.Config.Storage.Driver)
	assert.True(t, tc.Config.Storage.S3.PathStyle)
	assert.Equal(t, "hunter2", tc.Config.Auth.Password)
	assert.Equal(t, "warn", tc.Config.Log.Level, "empty env values are ignored")
}

func TestApplyEnvVars_InvalidInteger(t *testing.T) {
	tc := NewTrackedConfig()
	_, err := ApplyEnvVars(tc, envMap(map[string]string{"TASKDECK_UPCOMING_LIMIT": "many"}))
	assert.ErrorContains(t, err, "TASKDECK_UPCOMING_LIMIT")
}

func TestEnvVarMapping_PathsExist(t *testing.T) {
	cfg := Default()
	for name, path := range EnvVarMapping {
		_, err := cfg.GetValue(path)
		assert.NoError(t, err, name)
	}
}

func TestTrackedConfig_Set(t *testing.T) {
	tc := NewTrackedConfig()
	require.NoError(t, tc.Set("storage.driver", "memory", SourceFlag))
	assert.Equal(t, DriverMemory, tc.Config.Storage.Driver)
	assert.Equal(t, SourceFlag, tc.GetSource("storage.driver"))

	assert.Error(t, tc.Set("storage.bogus", "x", SourceFlag))
	assert.NotContains(t, tc.Sources, "storage.bogus")
}

func TestTrackedSource_String(t *testing.T) {
	assert.Equal(t, "default", TrackedSource{Source: SourceDefault}.String())
	assert.Equal(t, "project: /x/config.yaml", TrackedSource{Source: SourceProject, Path: "/x/config.yaml"}.String())
}
