// Package config loads the dupgraph CLI configuration.
//
// Values are resolved by viper in the order flags, DUPGRAPH_* environment
// variables, config file (yaml or json), defaults, and validated with
// go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/hupe1980/dupgraph"
)

// EnvPrefix prefixes environment overrides, e.g. DUPGRAPH_SOURCE_DSN.
const EnvPrefix = "DUPGRAPH"

// Config is the complete CLI configuration.
type Config struct {
	Source  SourceConfig `mapstructure:"source"`
	Store   StoreConfig  `mapstructure:"store"`
	Detect  DetectConfig `mapstructure:"detect"`
	Log     LogConfig    `mapstructure:"log"`
	Workers int          `mapstructure:"workers" validate:"gte=0"`
}

// SourceConfig selects the rows table.
type SourceConfig struct {
	Driver    string  `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN       string  `mapstructure:"dsn"`
	Table     string  `mapstructure:"table" validate:"required"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=0"`
}

// StoreConfig selects where artifacts are kept.
type StoreConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=local s3 minio"`
	Path        string `mapstructure:"path" validate:"required_if=Backend local"`
	Bucket      string `mapstructure:"bucket" validate:"required_unless=Backend local"`
	Prefix      string `mapstructure:"prefix"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Backend minio"`
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Secure      bool   `mapstructure:"secure"`
	Compression string `mapstructure:"compression" validate:"oneof=none lz4 zstd"`
}

// DetectConfig configures community detection.
type DetectConfig struct {
	Algorithm        string         `mapstructure:"algorithm" validate:"required"`
	Mode             string         `mapstructure:"mode" validate:"oneof=linear quadratic"`
	ParamsFile       string         `mapstructure:"params_file"`
	Params           map[string]any `mapstructure:"params"`
	FailurePolicy    string         `mapstructure:"failure_policy" validate:"oneof=escalate skip whole"`
	TrivialThreshold int            `mapstructure:"trivial_threshold" validate:"gte=1"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SetDefaults registers every key with its default so that environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", 0)

	v.SetDefault("source.driver", "sqlite")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.table", "hashtables")
	v.SetDefault("source.rate_limit", 0)
	v.SetDefault("source.burst", 1000)

	v.SetDefault("store.backend", "local")
	v.SetDefault("store.path", ".")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.prefix", "")
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.region", "")
	v.SetDefault("store.access_key", "")
	v.SetDefault("store.secret_key", "")
	v.SetDefault("store.secure", true)
	v.SetDefault("store.compression", "zstd")

	v.SetDefault("detect.algorithm", "multilevel")
	v.SetDefault("detect.mode", "linear")
	v.SetDefault("detect.params_file", "")
	v.SetDefault("detect.failure_policy", "escalate")
	v.SetDefault("detect.trivial_threshold", dupgraph.DefaultTrivialThreshold)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and returns the validated config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", dupgraph.ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = formatFieldError(fe)
	}
	return fmt.Errorf("%w: %s", dupgraph.ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
