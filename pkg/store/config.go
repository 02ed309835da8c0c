package store

import (
	"errors"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// DefaultMaxItemBytes mirrors the per-item quota of a replicated
	// browser storage area.
	DefaultMaxItemBytes = 8192

	// DefaultServeAddr is where the background daemon listens.
	DefaultServeAddr = "127.0.0.1:7391"
)

type Config interface {
	BasePath() string
	MaxItemBytes() int
}

// LoadConfig reads .marklet.yaml (from $MARKLET_CONFIG_PATH or the working
// directory) and MARKLET_* environment variables on top of the defaults.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.marklet")
	viper.SetDefault("sync.maxItemBytes", DefaultMaxItemBytes)
	viper.SetDefault("browser.debuggerURL", "")
	viper.SetDefault("browser.bin", "")
	viper.SetDefault("browser.headless", false)
	viper.SetDefault("serve.addr", DefaultServeAddr)
	viper.SetDefault("surfaces.launcher", "")
	viper.SetDefault("surfaces.options", "")
	viper.SetConfigName(".marklet") // .yaml is implicit
	viper.SetEnvPrefix("MARKLET")
	viper.AutomaticEnv()

	if override := os.Getenv("MARKLET_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, err
	}

	return &fileConfig{Path: path, MaxBytes: viper.GetInt("sync.maxItemBytes")}, nil
}

type fileConfig struct {
	Path     string `json:"path"`
	MaxBytes int    `json:"maxItemBytes"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

func (f *fileConfig) MaxItemBytes() int {
	return f.MaxBytes
}

// StaticConfig is a Config with fixed values.
type StaticConfig struct {
	Path     string
	MaxBytes int
}

func (s StaticConfig) BasePath() string {
	return s.Path
}

func (s StaticConfig) MaxItemBytes() int {
	return s.MaxBytes
}
