// =============================================================================
// ligaconv - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// SOURCES (highest precedence first):
//   1. Command line flags bound by the cmd package (--log-level, --backend)
//   2. LIGACONV_* environment variables (nested keys use "_", e.g.
//      LIGACONV_SESSION_BACKEND)
//   3. The YAML config file (config.yaml by default)
//   4. Built-in defaults
//
// Every load path ends the same way: defaults are applied to empty fields,
// then the result is validated.
//
// =============================================================================

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/ligaconv/internal/csvparser"
	"github.com/ginjaninja78/ligaconv/internal/session"
	"github.com/ginjaninja78/ligaconv/internal/storage"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "LIGACONV"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.Base("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the base directory for relative input paths and globs.
	// Default: "."
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir is where render --out writes the converted text.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	// Default: "liga_{timestamp}_{uuid}.txt"
	OutputNameFormat string `yaml:"output_name_format" mapstructure:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional rotating JSON log file. Empty disables it.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files read at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// CSV holds the tokenizer settings.
	CSV csvparser.Settings `yaml:"csv" mapstructure:"csv"`

	// Session selects where the work session is persisted.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Defaults are the conversion options of a new session.
	Defaults DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
}

// SessionConfig holds the session persistence settings.
type SessionConfig struct {
	// Backend is one of "file", "memory", "sqlite", "redis".
	// Default: "file"
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Key is the storage key of the session document.
	// Default: "mtg-converter-session"
	Key string `yaml:"key" mapstructure:"key"`

	// Version is the schema version written with each session.
	// Default: "1.0.0"
	Version string `yaml:"version" mapstructure:"version"`

	// Dir is used by the file backend.
	// Default: "./.ligaconv"
	Dir string `yaml:"dir" mapstructure:"dir"`

	// SQLitePath is used by the sqlite backend.
	// Default: "./.ligaconv/session.db"
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`

	// RedisURL is used by the redis backend.
	// Default: "redis://localhost:6379/0"
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

// DefaultsConfig holds the starting conversion options.
type DefaultsConfig struct {
	Condition      string `yaml:"condition" mapstructure:"condition"`
	IgnoreEdition  bool   `yaml:"ignore_edition" mapstructure:"ignore_edition"`
	ForceCondition bool   `yaml:"force_condition" mapstructure:"force_condition"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "."
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "liga_{timestamp}_{uuid}.txt"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.CSV.Delimiter == "" {
		config.CSV = csvparser.DefaultSettings()
	}
	if config.Session.Backend == "" {
		config.Session.Backend = storage.BackendFile
	}
	if config.Session.Key == "" {
		config.Session.Key = session.DefaultKey
	}
	if config.Session.Version == "" {
		config.Session.Version = session.DefaultVersion
	}
	if config.Session.Dir == "" {
		config.Session.Dir = "./.ligaconv"
	}
	if config.Session.SQLitePath == "" {
		config.Session.SQLitePath = filepath.Join(config.Session.Dir, "session.db")
	}
	if config.Session.RedisURL == "" {
		config.Session.RedisURL = "redis://localhost:6379/0"
	}
	if config.Defaults.Condition == "" {
		config.Defaults.Condition = string(types.ConditionNM)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

var backends = []string{storage.BackendFile, storage.BackendMemory, storage.BackendSQLite, storage.BackendRedis}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if !oneOf(strings.ToLower(c.LogLevel), logLevels) {
		return errors.WithDetails(ErrInvalid, "field", "log_level", "value", c.LogLevel)
	}
	if c.MaxConcurrency < 1 {
		return errors.WithDetails(ErrInvalid, "field", "max_concurrency", "value", c.MaxConcurrency)
	}
	if !oneOf(strings.ToLower(c.Session.Backend), backends) {
		return errors.WithDetails(ErrInvalid, "field", "session.backend", "value", c.Session.Backend)
	}
	if _, err := types.ParseCondition(c.Defaults.Condition); err != nil {
		return errors.WithDetails(ErrInvalid, "field", "defaults.condition", "value", c.Defaults.Condition)
	}
	if _, err := c.CSV.Comma(); err != nil {
		return errors.WithDetails(ErrInvalid, "field", "csv.delimiter", "value", c.CSV.Delimiter)
	}
	if strings.ContainsAny(c.OutputNameFormat, `/\`) {
		return errors.WithDetails(ErrInvalid, "field", "output_name_format", "value", c.OutputNameFormat)
	}
	return nil
}

func oneOf(value string, options []string) bool {
	for _, o := range options {
		if value == o {
			return true
		}
	}
	return false
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads and validates a YAML configuration file.
//
// PARAMETERS:
//   - configPath: The path to the YAML file.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SetDefaults registers every key with its default value on v. Viper only
// resolves environment variables for keys it knows about.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_name_format", d.OutputNameFormat)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_concurrency", d.MaxConcurrency)
	v.SetDefault("csv.delimiter", d.CSV.Delimiter)
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.key", d.Session.Key)
	v.SetDefault("session.version", d.Session.Version)
	v.SetDefault("session.dir", d.Session.Dir)
	v.SetDefault("session.sqlite_path", "")
	v.SetDefault("session.redis_url", d.Session.RedisURL)
	v.SetDefault("defaults.condition", d.Defaults.Condition)
	v.SetDefault("defaults.ignore_edition", d.Defaults.IgnoreEdition)
	v.SetDefault("defaults.force_condition", d.Defaults.ForceCondition)
}

// NewViper returns a viper instance with the defaults and the LIGACONV_
// environment binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile points v at a config file.
//
// An explicit path must exist. Without one, config.yaml is looked up in the
// working directory and a missing file leaves the defaults in place.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper decodes the merged view of v into a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Errorf("failed to decode configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// =============================================================================
// WRITING
// =============================================================================

// Encode renders the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}

// Write saves the configuration as YAML at path. It refuses to overwrite an
// existing file.
func (c *Config) Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("config file %s already exists", path)
	}

	data, err := c.Encode()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// StorageOptions returns the options for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:    c.Session.Backend,
		Dir:        c.Session.Dir,
		SQLitePath: c.Session.SQLitePath,
		RedisURL:   c.Session.RedisURL,
	}
}

// SessionSettings returns the session store configuration.
func (c *Config) SessionSettings() session.Config {
	return session.Config{
		Key:     c.Session.Key,
		Version: c.Session.Version,
	}
}

// DefaultOptions returns the starting conversion options.
func (c *Config) DefaultOptions() (types.ConversionOptions, error) {
	condition, err := types.ParseCondition(c.Defaults.Condition)
	if err != nil {
		return types.ConversionOptions{}, err
	}
	return types.ConversionOptions{
		Condition:      condition,
		IgnoreEdition:  c.Defaults.IgnoreEdition,
		ForceCondition: c.Defaults.ForceCondition,
	}, nil
}
