// Package config holds the configuration of the jfifmeta command.
package config

import (
	"fmt"
	"strings"

	"github.com/bep/jfifmeta"
	"github.com/bep/jfifmeta/internal/logger"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "JFIFMETA"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the application configuration
type Config struct {
	LogLevel     string   `mapstructure:"log-level"`
	Mode         string   `mapstructure:"mode"`
	MaxIFDDepth  int      `mapstructure:"max-depth"`
	LimitNumTags uint32   `mapstructure:"limit-tags"`
	Format       string   `mapstructure:"format"`
	ShowJFIF     bool     `mapstructure:"jfif"`
	S3           S3Config `mapstructure:"s3"`
}

// S3Config represents S3 connection configuration
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	UseSSL    bool   `mapstructure:"use-ssl"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel:     "warn",
		Mode:         jfifmeta.ModeCompatible.String(),
		MaxIFDDepth:  jfifmeta.DefaultMaxIFDDepth,
		LimitNumTags: jfifmeta.DefaultLimitNumTags,
		Format:       FormatText,
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// SetDefaults registers the defaults from New with v, so every key
// can also be set from the environment.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("max-depth", d.MaxIFDDepth)
	v.SetDefault("limit-tags", d.LimitNumTags)
	v.SetDefault("format", d.Format)
	v.SetDefault("jfif", d.ShowJFIF)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.access-key", d.S3.AccessKey)
	v.SetDefault("s3.secret-key", d.S3.SecretKey)
	v.SetDefault("s3.use-ssl", d.S3.UseSSL)
}

// Load reads the configuration from v, the JFIFMETA_* environment variables
// and, if the "config" key is set, a config file.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if filename := v.GetString("config"); filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := jfifmeta.ParseDecodeMode(c.Mode); err != nil {
		return err
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	if c.MaxIFDDepth < 0 {
		return fmt.Errorf("max-depth must not be negative (0 means default), got %d", c.MaxIFDDepth)
	}
	return nil
}

// DecodeOptions returns the decoder options for this configuration.
// The reader and logger are left for the caller to set.
func (c *Config) DecodeOptions() (jfifmeta.Options, error) {
	mode, err := jfifmeta.ParseDecodeMode(c.Mode)
	if err != nil {
		return jfifmeta.Options{}, err
	}
	return jfifmeta.Options{
		MaxIFDDepth:  c.MaxIFDDepth,
		LimitNumTags: c.LimitNumTags,
		Mode:         mode,
	}, nil
}
