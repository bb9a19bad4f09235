package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// GetValue returns the value at a dot-separated yaml path such as
// "storage.driver", formatted as a string.
func (c *Config) GetValue(path string) (string, error) {
	v, err := fieldAt(reflect.ValueOf(c).Elem(), path)
	if err != nil {
		return "", err
	}
	return formatValue(v), nil
}

// SetValue parses value according to the field type at path and stores it.
func (c *Config) SetValue(path, value string) error {
	v, err := fieldAt(reflect.ValueOf(c).Elem(), path)
	if err != nil {
		return err
	}
	if !v.CanSet() {
		return fmt.Errorf("cannot set %s", path)
	}
	return setFieldValue(v, value)
}

// fieldAt walks nested structs one yaml key at a time.
func fieldAt(v reflect.Value, path string) (reflect.Value, error) {
	if path == "" {
		return reflect.Value{}, fmt.Errorf("empty config key")
	}
	for _, key := range strings.Split(path, ".") {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("unknown config key: %s (%s is not a section)", path, key)
		}
		next, ok := structField(v, key)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown config key: %s", path)
		}
		v = next
	}
	return v, nil
}

// structField matches key against yaml tag names, falling back to a
// case-insensitive Go field name.
func structField(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if tag == key || strings.EqualFold(f.Name, key) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a field to the parsed value.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(int64(i))
	case reflect.Bool:
		field.SetBool(parseBool(value))
	case reflect.Struct:
		return fmt.Errorf("%s is a section; set one of its keys instead", field.Type().Name())
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%+v", v.Interface())
	}
}

// AllConfigPaths returns all known config paths.
func AllConfigPaths() []string {
	return []string{
		"storage.driver",
		"storage.dir",
		"storage.key",
		"storage.auth_key",
		"storage.journal_key",
		"storage.sqlite.path",
		"storage.postgres.dsn",
		"storage.s3.bucket",
		"storage.s3.region",
		"storage.s3.endpoint",
		"storage.s3.prefix",
		"storage.s3.path_style",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"auth.username",
		"auth.password",
		"log.level",
		"log.format",
		"view.upcoming_limit",
		"view.sort_by",
		"view.sort_direction",
	}
}

// secretPaths are masked wherever config is printed.
var secretPaths = map[string]bool{
	"storage.s3.secret_access_key": true,
	"auth.password":                true,
}

// IsSecret reports whether the value at path should be masked in output.
func IsSecret(path string) bool {
	return secretPaths[path]
}
