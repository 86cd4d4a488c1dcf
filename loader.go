// FILE: lixenwraith/reload/loader.go
package reload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoaderFunc produces a candidate configuration snapshot. The reload loop calls
// it once per tick and does not care whether the source is a file, environment,
// or a network fetch.
type LoaderFunc func() (Config, error)

// ValidatorFunc performs semantic checks on a candidate snapshot before it is
// allowed to replace the last-applied one.
type ValidatorFunc func(Config) error

// EnvPrefix is prepended to environment variable names derived from config
// paths: "auth.jwt_secret" is overridden by RELOAD_AUTH_JWT_SECRET.
const EnvPrefix = "RELOAD_"

// configPaths enumerates every leaf setting the loader recognizes, in
// dot-notation. Environment overrides are resolved against this list.
var configPaths = []string{
	"auth.jwt_pem",
	"auth.jwt_pem_path",
	"auth.jwt_secret",
	"logging.level",
	"logging.dir",
	"rate_limit.enabled",
	"rate_limit.per_ip",
	"rate_limit.per_user",
	"rate_limit.rate_per_sec",
	"rate_limit.burst",
	"rate_limit.exempt_paths",
}

// FileLoader returns a LoaderFunc bound to a config file path.
func FileLoader(path string) LoaderFunc {
	return func() (Config, error) {
		return Load(path)
	}
}

// Load reads a configuration snapshot from a file, applying environment
// variable overrides on top of file values and defaults underneath. The format
// is detected from the extension first, then from content. A missing or
// unreadable file is an error so a reload cycle skips instead of silently
// reverting a running server to defaults.
func Load(path string) (Config, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: '%s'", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(fileData)
	}

	fileConfig := make(map[string]any)
	if err := parseInto(format, path, fileData, &fileConfig); err != nil {
		return Config{}, err
	}

	return decodeSnapshot(applyEnvOverrides(fileConfig))
}

// LoadEnv builds a snapshot from defaults and environment variables alone, for
// deployments that carry no config file (secrets via environment only).
func LoadEnv() (Config, error) {
	return decodeSnapshot(applyEnvOverrides(map[string]any{}))
}

// parseInto unmarshals raw file data into a nested map using the given format.
func parseInto(format, path string, data []byte, out *map[string]any) error {
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(out); err != nil {
			return fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	default:
		return fmt.Errorf("unable to determine config format for file '%s'", path)
	}
	return nil
}

// applyEnvOverrides layers environment values over file values for every
// recognized path. Values stay strings; decodeSnapshot converts them.
func applyEnvOverrides(fileConfig map[string]any) map[string]any {
	merged := make(map[string]any)
	for p, v := range flattenMap(fileConfig, "") {
		merged[p] = v
	}

	for _, p := range configPaths {
		if value, exists := os.LookupEnv(envTransform(p)); exists {
			merged[p] = value
		}
	}

	nested := make(map[string]any)
	for p, v := range merged {
		setNestedValue(nested, p, v)
	}
	return nested
}

// envTransform converts a dot-notation path to its environment variable name.
func envTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	return EnvPrefix + strings.ToUpper(env)
}

// decodeSnapshot decodes a nested settings map into a typed snapshot seeded
// with defaults, so absent settings keep their default values.
func decodeSnapshot(nested map[string]any) (Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(nested); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// detectFileFormat determines the config format from a file extension.
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try YAML (superset of JSON, so check after JSON)
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	// Try TOML last
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}
