// Package config loads gpiosample settings from CLI flags, GPIOSAMPLE_*
// environment variables and a TOML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smazurov/gpiosample/internal/logging"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "GPIOSAMPLE_"

// LoadConfig fills opts, a pointer to a flat options struct, with proper
// precedence: CLI args > env vars > config file. Fields are mapped by their
// `toml` (dotted path) and `env` tags; a string field named Config holds
// the file path. If cmd is provided, flags explicitly set on the command
// line are left alone.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	if field := v.FieldByName("Config"); field.IsValid() && field.Kind() == reflect.String && field.String() != "" {
		data, err := readTOML(field.String())
		if err != nil {
			return err
		}
		if data != nil {
			applyTOML(v, t, data, changedFlags)
		}
	}

	applyEnv(v, t, changedFlags)
	return nil
}

// readTOML parses path into a generic map. A missing file yields nil.
func readTOML(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var data map[string]any
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return data, nil
}

func applyTOML(v reflect.Value, t reflect.Type, data map[string]any, skip map[string]bool) {
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if skip[fieldNameToFlag(fieldType.Name)] {
			continue
		}
		if tomlPath := fieldType.Tag.Get("toml"); tomlPath != "" {
			if value := getNestedValue(data, tomlPath); value != nil {
				setFieldValue(v.Field(i), value)
			}
		}
	}
}

func applyEnv(v reflect.Value, t reflect.Type, skip map[string]bool) {
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if skip[fieldNameToFlag(fieldType.Name)] {
			continue
		}
		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if envValue, ok := os.LookupEnv(EnvPrefix + envKey); ok && envValue != "" {
				setFieldValueFromString(v.Field(i), envValue)
			}
		}
	}
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "GPIODriver" -> "gpio-driver", "PanelAddr" -> "panel-addr".
func fieldNameToFlag(fieldName string) string {
	runes := []rune(fieldName)
	var result []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				result = append(result, '-')
			}
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// setFieldValue sets a field from a decoded TOML value.
func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		switch s := value.(type) {
		case string:
			field.SetString(s)
		case int64, float64:
			// Bare numbers reach duration parsing as text and fail there.
			field.SetString(fmt.Sprint(s))
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		switch i := value.(type) {
		case int64:
			field.SetInt(i)
		case int:
			field.SetInt(int64(i))
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			if arr, ok := value.([]any); ok {
				slice := make([]string, 0, len(arr))
				for _, v := range arr {
					if s, strOk := v.(string); strOk {
						slice = append(slice, s)
					}
				}
				field.Set(reflect.ValueOf(slice))
			}
		}
	}
}

// setFieldValueFromString sets a field value from string (for env vars).
func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			slice := make([]string, len(parts))
			for i, part := range parts {
				slice[i] = strings.TrimSpace(part)
			}
			field.Set(reflect.ValueOf(slice))
		}
	}
}

// ReadLoggingConfig reads the [logging] table. Keys other than level,
// format and file are module levels; a nested [logging.modules] table is
// accepted too.
func ReadLoggingConfig(configPath string) (logging.Config, error) {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	data, err := readTOML(configPath)
	if err != nil || data == nil {
		return cfg, err
	}

	section, ok := data["logging"].(map[string]any)
	if !ok {
		return cfg, nil
	}

	for key, value := range section {
		switch key {
		case "level":
			cfg.Level = fmt.Sprint(value)
		case "format":
			cfg.Format = fmt.Sprint(value)
		case "file":
			cfg.File = fmt.Sprint(value)
		case "modules":
			if modules, isTable := value.(map[string]any); isTable {
				for module, level := range modules {
					cfg.Modules[module] = fmt.Sprint(level)
				}
			}
		default:
			if level, isString := value.(string); isString {
				cfg.Modules[key] = level
			}
		}
	}

	return cfg, nil
}

// LoadLoggingConfig is ReadLoggingConfig that falls back to defaults when
// the file is missing or malformed.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg, err := ReadLoggingConfig(configPath)
	if err != nil {
		return logging.Config{Level: "info", Format: "text", Modules: make(map[string]string)}
	}
	return cfg
}
