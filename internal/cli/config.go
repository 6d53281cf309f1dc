package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/blockstore"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for the config file.
	AppName = "blockctl"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "BLOCKCTL"
)

// Config holds the blockctl configuration.
type Config struct {
	Image      string `mapstructure:"image"`
	BlockCount int    `mapstructure:"block_count"`
	BlockSize  int    `mapstructure:"block_size"`
	Strict     bool   `mapstructure:"strict"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`

	Remote RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig selects the blob store used by push and pull.
type RemoteConfig struct {
	Provider  string `mapstructure:"provider"` // local, s3, minio
	Root      string `mapstructure:"root"`     // local directory
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("image", "device.img")
	v.SetDefault("block_count", blockstore.DefaultBlockCount)
	v.SetDefault("block_size", blockstore.DefaultBlockSize)
	v.SetDefault("strict", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	v.SetDefault("remote.provider", "local")
	v.SetDefault("remote.root", "images")
	v.SetDefault("remote.region", "us-east-1")
	v.SetDefault("remote.use_ssl", true)
}

// newViper creates a viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the optional config file and unmarshals the merged
// defaults, file, environment and flag values.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// deviceOptions maps the config to device construction options.
func (c Config) deviceOptions(logger *blockstore.Logger) []blockstore.Option {
	opts := []blockstore.Option{
		blockstore.WithGeometry(c.BlockCount, c.BlockSize),
		blockstore.WithLogger(logger),
	}
	if c.Strict {
		opts = append(opts, blockstore.WithStrictImageSize())
	}
	return opts
}

// newLogger builds the logger selected by log_level and log_format.
func (c Config) newLogger() (*blockstore.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json":
		return blockstore.NewJSONLogger(level), nil
	case "text", "":
		return blockstore.NewTextLogger(level), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}
