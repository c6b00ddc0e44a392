package config

// Changes describes what a config reload altered.
type Changes struct {
	// LogLevel and RateLimit can be applied to a running server.
	LogLevel  bool
	RateLimit bool

	// Restart lists changed keys that only take effect on restart.
	Restart []string
}

// Diff compares two configurations.
func Diff(old, cur *ServerConfig) Changes {
	var ch Changes
	ch.LogLevel = old.Log.Level != cur.Log.Level
	ch.RateLimit = old.Server.Redis.RateLimit != cur.Server.Redis.RateLimit

	or, nr := old.Server.Redis, cur.Server.Redis
	restart := []struct {
		key     string
		changed bool
	}{
		{"server.redis.addr", or.Addr != nr.Addr},
		{"server.redis.read_timeout", or.ReadTimeout != nr.ReadTimeout},
		{"server.redis.write_timeout", or.WriteTimeout != nr.WriteTimeout},
		{"server.redis.idle_timeout", or.IdleTimeout != nr.IdleTimeout},
		{"server.redis.max_connections", or.MaxConnections != nr.MaxConnections},
		{"server.admin", old.Server.Admin != cur.Server.Admin},
		{"storage.sweep_interval", old.Storage.SweepInterval != cur.Storage.SweepInterval},
		{"log.format", old.Log.Format != cur.Log.Format},
	}
	for _, r := range restart {
		if r.changed {
			ch.Restart = append(ch.Restart, r.key)
		}
	}
	return ch
}

// Live reports whether any change can be applied without a restart.
func (c Changes) Live() bool {
	return c.LogLevel || c.RateLimit
}
