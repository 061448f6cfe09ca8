package checker

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/makeitchaccha/fluent-locale-checker/checker/locale"
	"github.com/makeitchaccha/fluent-locale-checker/checker/report"
)

const (
	DefaultRoot   = "locales"
	DefaultLocale = "en-US"
	EnvPrefix     = "FLC"
)

type Config struct {
	Root   string       `toml:"root"`
	Log    LogConfig    `toml:"log"`
	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type CheckConfig struct {
	DefaultLocale string `toml:"default_locale"`
	Strict        bool   `toml:"strict"`
	Recursive     bool   `toml:"recursive"`
	Concurrency   int    `toml:"concurrency"`
	OnlyCheck     bool   `toml:"only_check"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Color  bool   `toml:"color"`
}

var defaults = map[string]any{
	"root":                 DefaultRoot,
	"log.level":            "warn",
	"log.format":           "text",
	"log.add_source":       false,
	"check.default_locale": DefaultLocale,
	"check.strict":         false,
	"check.recursive":      false,
	"check.concurrency":    locale.DefaultConcurrency,
	"check.only_check":     false,
	"output.format":        string(report.FormatText),
	"output.color":         true,
}

// NewViper returns a viper instance with the defaults registered and
// environment overrides enabled, e.g. FLC_CHECK_STRICT=true.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// LoadConfig reads the optional config file at path into v and decodes the
// merged settings.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		TagName:          "toml",
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("invalid config: root directory must not be empty")
	}
	if c.Check.DefaultLocale == "" {
		return fmt.Errorf("invalid config: check.default_locale must not be empty")
	}
	if c.Check.Concurrency <= 0 {
		return fmt.Errorf("invalid config: check.concurrency must be positive, got %d", c.Check.Concurrency)
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: unknown log format %q", c.Log.Format)
	}
	return nil
}
