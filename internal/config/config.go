// Package config adapts Viper to platform.Config and builds the zap logger.
package config

import (
	"time"

	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/spf13/viper"
)

var _ platform.Config = (*ViperConfig)(nil)

// ViperConfig is a platform.Config over a Viper instance.
type ViperConfig struct {
	v *viper.Viper
}

// New wraps v. A nil v gives an empty configuration.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

func (c *ViperConfig) Unmarshal(target any) error { return c.v.Unmarshal(target) }

func (c *ViperConfig) Get(key string) any { return c.v.Get(key) }

func (c *ViperConfig) GetString(key string) string { return c.v.GetString(key) }

func (c *ViperConfig) GetInt(key string) int { return c.v.GetInt(key) }

func (c *ViperConfig) GetBool(key string) bool { return c.v.GetBool(key) }

func (c *ViperConfig) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

func (c *ViperConfig) GetStringSlice(key string) []string { return c.v.GetStringSlice(key) }

func (c *ViperConfig) IsSet(key string) bool { return c.v.IsSet(key) }

// Sub returns the subtree at key. A missing subtree is an empty Config, so
// callers never need a nil check.
func (c *ViperConfig) Sub(key string) platform.Config {
	sub := c.v.Sub(key)
	if sub == nil {
		return New(nil)
	}
	return New(sub)
}

// Viper returns the wrapped instance.
func (c *ViperConfig) Viper() *viper.Viper {
	return c.v
}
