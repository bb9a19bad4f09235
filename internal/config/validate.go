package config

import (
	"fmt"
	"path"
	"slices"
	"strings"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
)

var (
	sortKeys       = []string{"createdAt", "deadline", "priority"}
	sortDirections = []string{"asc", "desc"}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"text", "json"}
)

// Validate reports the first invalid field as a CONFIG_INVALID error.
func (c *Config) Validate() error {
	s := c.Storage
	if !slices.Contains(Drivers, s.Driver) {
		return deckerrors.ErrConfigInvalid("storage.driver",
			fmt.Sprintf("unknown driver %q (expected one of %s)", s.Driver, strings.Join(Drivers, ", ")))
	}
	if err := validateKeys(s); err != nil {
		return err
	}

	switch s.Driver {
	case DriverFile:
		if s.Dir == "" {
			return deckerrors.ErrConfigInvalid("storage.dir", "required for the file driver")
		}
	case DriverSQLite:
		if s.SQLite.Path == "" {
			return deckerrors.ErrConfigInvalid("storage.sqlite.path", "required for the sqlite driver")
		}
	case DriverPostgres:
		if s.Postgres.DSN == "" {
			return deckerrors.ErrConfigInvalid("storage.postgres.dsn", "required for the postgres driver")
		}
	case DriverS3:
		if s.S3.Bucket == "" {
			return deckerrors.ErrConfigInvalid("storage.s3.bucket", "required for the s3 driver")
		}
		if (s.S3.AccessKeyID == "") != (s.S3.SecretAccessKey == "") {
			return deckerrors.ErrConfigInvalid("storage.s3.access_key_id",
				"access_key_id and secret_access_key must be set together")
		}
	}

	if c.Auth.Username == "" {
		return deckerrors.ErrConfigInvalid("auth.username", "must not be empty")
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return deckerrors.ErrConfigInvalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return deckerrors.ErrConfigInvalid("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}

	if c.View.UpcomingLimit <= 0 {
		return deckerrors.ErrConfigInvalid("view.upcoming_limit", "must be positive")
	}
	if !slices.Contains(sortKeys, c.View.SortBy) {
		return deckerrors.ErrConfigInvalid("view.sort_by",
			fmt.Sprintf("unknown sort key %q (expected one of %s)", c.View.SortBy, strings.Join(sortKeys, ", ")))
	}
	if !slices.Contains(sortDirections, c.View.SortDirection) {
		return deckerrors.ErrConfigInvalid("view.sort_direction",
			fmt.Sprintf("unknown direction %q (expected asc or desc)", c.View.SortDirection))
	}
	return nil
}

// validateKeys requires every blob key to be set and distinct. Keys are
// compared after blob file naming, so "x" and "x.json" collide.
func validateKeys(s StorageConfig) error {
	keys := []struct{ path, key string }{
		{"storage.key", s.Key},
		{"storage.auth_key", s.AuthKey},
		{"storage.journal_key", s.JournalKey},
	}
	seen := make(map[string]string, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k.key) == "" {
			return deckerrors.ErrConfigInvalid(k.path, "must not be empty")
		}
		name := BlobName(k.key)
		if other, ok := seen[name]; ok {
			return deckerrors.ErrConfigInvalid(k.path, "must differ from "+other)
		}
		seen[name] = k.path
	}
	return nil
}

// BlobName is the file or object name a blob key is stored under: the key
// itself when it ends in .json or .jsonl, otherwise the key plus ".json".
func BlobName(key string) string {
	switch path.Ext(key) {
	case ".json", ".jsonl":
		return key
	}
	return key + ".json"
}
