// Package config loads lexfold settings: the log level, tracing and the
// per-grammar options, keyword lists and file patterns.
//
// A Config is an immutable snapshot built from built-in defaults, the
// settings file (TOML or YAML) and LEXFOLD_ environment variables, in
// increasing order of precedence. Reloading produces a new snapshot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/lexfold/internal/config/loader"
	"github.com/dshills/lexfold/internal/logging"
	"github.com/dshills/lexfold/internal/tracing"
)

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "LEXFOLD_"

// maxIncludeDepth limits nested @include directives.
const maxIncludeDepth = 8

// Config is a loaded configuration.
type Config struct {
	path string
	data map[string]any
}

// Option configures loading.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS reads settings files through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnv replaces the environment loader. A nil loader ignores the
// environment.
func WithEnv(env loader.Loader) Option {
	return func(o *options) {
		o.env = env
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{data: defaultConfig()}
}

// Load reads the settings file at path on top of the defaults. A missing
// file is not an error; an empty path loads the defaults and the
// environment only.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{fs: loader.DefaultFS(), env: loader.NewEnvLoader(EnvPrefix)}
	for _, opt := range opts {
		opt(&o)
	}

	data := defaultConfig()
	if path != "" {
		file, err := loader.LoadWithIncludes(o.fs, path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		data = loader.DeepMerge(data, file)
	}
	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		data = loader.DeepMerge(data, env)
	}

	c := &Config{path: path, data: data}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromMap builds a configuration from already decoded settings.
func FromMap(m map[string]any) (*Config, error) {
	c := &Config{data: loader.DeepMerge(defaultConfig(), loader.Clone(m))}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload reads the same file again.
func (c *Config) Reload(opts ...Option) (*Config, error) {
	return Load(c.path, opts...)
}

// DefaultPath returns the settings file in the user configuration
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lexfold", "config.toml")
}

func defaultConfig() map[string]any {
	t := tracing.DefaultConfig()
	return map[string]any{
		"log": map[string]any{
			"level": "info",
		},
		"tracing": map[string]any{
			"enabled":      t.Enabled,
			"exporter":     t.Exporter,
			"file_path":    t.FilePath,
			"service_name": t.ServiceName,
		},
		"grammars": map[string]any{},
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Merged returns a copy of the merged settings.
func (c *Config) Merged() map[string]any {
	return loader.Clone(c.data)
}

// Validate checks every section and reports all the settings that are
// wrong.
func (c *Config) Validate() error {
	var problems Problems
	if level, err := c.GetString("log.level"); err != nil {
		problems.add(err)
	} else {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "warning", "error":
		default:
			problems.add(notAccepted("log.level", "debug, info, warn or error", level))
		}
	}

	_, err := c.GetBool("tracing.enabled")
	problems.add(err)
	if exporter, err := c.GetString("tracing.exporter"); err != nil {
		problems.add(err)
	} else {
		switch exporter {
		case "stdout", "file", "none":
		default:
			problems.add(notAccepted("tracing.exporter", "stdout, file or none", exporter))
		}
	}

	v, _ := c.Get("grammars")
	if _, ok := v.(map[string]any); !ok {
		problems.add(typeMismatch("grammars", "map", v))
	}
	for _, name := range c.Grammars() {
		_, err := c.Grammar(name)
		problems.add(err)
	}
	return problems.Err()
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	s, _ := c.GetString("log.level")
	return logging.ParseLevel(s)
}

// Tracing returns the tracing settings.
func (c *Config) Tracing() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled, _ = c.GetBool("tracing.enabled")
	if s, err := c.GetString("tracing.exporter"); err == nil {
		cfg.Exporter = s
	}
	if s, err := c.GetString("tracing.file_path"); err == nil {
		cfg.FilePath = s
	}
	if s, err := c.GetString("tracing.service_name"); err == nil && s != "" {
		cfg.ServiceName = s
	}
	return cfg
}

// Grammars returns the names of the grammar sections in sorted order.
func (c *Config) Grammars() []string {
	v, _ := c.Get("grammars")
	m, _ := v.(map[string]any)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value at the given dot-separated path.
func (c *Config) Get(path string) (any, bool) {
	return getPath(c.data, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(path, "string", v)
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	default:
		return 0, typeMismatch(path, "int", v)
	}
}

// GetBool returns a boolean value at the given path. The integers 0
// and 1 are accepted as booleans.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case int, int64, uint64:
		switch fmt.Sprint(val) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
	}
	return false, typeMismatch(path, "bool", v)
}

// GetStringSlice returns a string slice at the given path.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	return stringSlice(path, v)
}

func stringSlice(path string, v any) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, typeMismatch(path, "[]string", v)
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, typeMismatch(path, "[]string", v)
	}
}

// scalar renders an option value the way grammar options parse it.
func scalar(path string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	default:
		return "", typeMismatch(path, "scalar", v)
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
