package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Detection EndpointConfig `mapstructure:"detection"`
	Sensor    EndpointConfig `mapstructure:"sensor"`
	Page      PageConfig     `mapstructure:"page"`
	Log       LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type EndpointConfig struct {
	URL string `mapstructure:"url"`
}

// PageConfig points at the console markup. Empty path means the embedded
// default page.
type PageConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the optional file at path plus TIVAAN_*
// environment overrides (e.g. TIVAAN_DETECTION_URL).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("detection.url", "http://127.0.0.1:8501/api/detect")
	v.SetDefault("sensor.url", "http://127.0.0.1:8501/api/iot")
	v.SetDefault("page.path", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("TIVAAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	for name, endpoint := range map[string]string{
		"detection.url": c.Detection.URL,
		"sensor.url":    c.Sensor.URL,
	} {
		if endpoint == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
	}
	return nil
}
