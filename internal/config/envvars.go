package config

import (
	"fmt"
	"sort"
	"strings"
)

// EnvVarMapping defines the mapping between environment variables and config paths.
var EnvVarMapping = map[string]string{
	"TASKDECK_STORAGE":          "storage.driver",
	"TASKDECK_DATA_DIR":         "storage.dir",
	"TASKDECK_DATA_KEY":         "storage.key",
	"TASKDECK_AUTH_KEY":         "storage.auth_key",
	"TASKDECK_JOURNAL_KEY":      "storage.journal_key",
	"TASKDECK_SQLITE_PATH":      "storage.sqlite.path",
	"TASKDECK_POSTGRES_DSN":     "storage.postgres.dsn",
	"TASKDECK_S3_BUCKET":        "storage.s3.bucket",
	"TASKDECK_S3_REGION":        "storage.s3.region",
	"TASKDECK_S3_ENDPOINT":      "storage.s3.endpoint",
	"TASKDECK_S3_PREFIX":        "storage.s3.prefix",
	"TASKDECK_S3_PATH_STYLE":    "storage.s3.path_style",
	"TASKDECK_S3_ACCESS_KEY_ID": "storage.s3.access_key_id",
	"TASKDECK_S3_SECRET_KEY":    "storage.s3.secret_access_key",
	"TASKDECK_USERNAME":         "auth.username",
	"TASKDECK_PASSWORD":         "auth.password",
	"TASKDECK_LOG_LEVEL":        "log.level",
	"TASKDECK_LOG_FORMAT":       "log.format",
	"TASKDECK_UPCOMING_LIMIT":   "view.upcoming_limit",
	"TASKDECK_SORT_BY":          "view.sort_by",
	"TASKDECK_SORT_DIRECTION":   "view.sort_direction",
}

// ApplyEnvVars applies environment variable overrides from the process
// environment. Returns the config paths that were overridden.
func ApplyEnvVars(tc *TrackedConfig, lookup func(string) (string, bool)) ([]string, error) {
	return applyEnv(tc, lookup)
}

func applyEnv(tc *TrackedConfig, lookup func(string) (string, bool)) ([]string, error) {
	names := make([]string, 0, len(EnvVarMapping))
	for name := range EnvVarMapping {
		names = append(names, name)
	}
	sort.Strings(names)

	var overridden []string
	for _, name := range names {
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		path := EnvVarMapping[name]
		if err := tc.Config.SetValue(path, value); err != nil {
			return overridden, fmt.Errorf("%s: %w", name, err)
		}
		tc.SetSourceWithPath(path, SourceEnv, name)
		overridden = append(overridden, path)
	}
	return overridden, nil
}

// parseBool parses a boolean string (case-insensitive).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
