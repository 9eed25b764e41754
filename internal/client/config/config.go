package config

// Config holds runtime settings for the winsome CLI.
//
// Fields:
//   - ServerAddr: host:port of the main server endpoint.
//   - CallbackAddr: host:port of the follower-callback endpoint.
//   - MulticastAddr: UDP group the server announces rewards on.
type Config struct {
	ServerAddr    string
	CallbackAddr  string
	MulticastAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:6789"
	c.CallbackAddr = "127.0.0.1:6790"
	c.MulticastAddr = "239.255.32.32:4446"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}
