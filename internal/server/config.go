package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    int
	DevMode bool
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerConfig reads the server section of v. Keys are read one by one so
// environment overrides apply.
func ServerConfig(v *viper.Viper) (Config, error) {
	c := Config{
		Host:    v.GetString("server.host"),
		Port:    v.GetInt("server.port"),
		DevMode: v.GetBool("server.dev_mode"),
	}
	if c.Port <= 0 || c.Port > 65535 {
		return Config{}, fmt.Errorf("server.port %d out of range", c.Port)
	}
	return c, nil
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.rate_limit_rps", 100)
	v.SetDefault("server.rate_limit_burst", 200)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/themeforge.db")
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("realtime.channel", "theme_updates")
	v.SetDefault("realtime.channels", []string{"all"})
	v.SetDefault("realtime.debounce", "100ms")
	v.SetDefault("realtime.batch", true)
	v.SetDefault("realtime.priority", "normal")
	v.SetDefault("realtime.reconnect_backoff", "0s")
	v.SetDefault("realtime.max_reconnect_backoff", "30s")

	v.SetDefault("theme.glass_alias", false)
	v.SetDefault("seed.presets", true)

	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "10s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("themeforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/themeforge")
	}

	// Environment variable support: TF_SERVER_PORT=9090
	v.SetEnvPrefix("TF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}
