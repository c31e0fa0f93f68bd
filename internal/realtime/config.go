package realtime

import "github.com/HerbHall/themeforge/pkg/platform"

// ConfigFrom reads the "realtime" subtree: channel, channels, debounce,
// batch, priority, reconnect_backoff and max_reconnect_backoff. Missing keys
// keep their defaults.
func ConfigFrom(c platform.Config) Config {
	cfg := DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.IsSet("channel") {
		cfg.Channel = c.GetString("channel")
	}
	if c.IsSet("channels") {
		cfg.Channels = c.GetStringSlice("channels")
	}
	if c.IsSet("debounce") {
		cfg.Debounce = c.GetDuration("debounce")
	}
	if c.IsSet("batch") {
		cfg.Batch = c.GetBool("batch")
	}
	if c.IsSet("priority") {
		switch p := Priority(c.GetString("priority")); p {
		case PriorityHigh, PriorityNormal, PriorityLow:
			cfg.Priority = p
		}
	}
	if c.IsSet("reconnect_backoff") {
		cfg.ReconnectBackoff = c.GetDuration("reconnect_backoff")
	}
	if c.IsSet("max_reconnect_backoff") {
		cfg.MaxReconnectBackoff = c.GetDuration("max_reconnect_backoff")
	}
	return cfg
}
