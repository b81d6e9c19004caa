package config

// Programmatic options, for callers that read their environment elsewhere
// (e.g. via cleanenv struct tags) and hand the values over explicitly.

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port != "" {
			c.Port = port
		}
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env != "" {
			c.Environment = env
		}
		return nil
	}
}

// WithDatabaseURL selects the repository from a connection string: empty or
// "memory" selects the in-memory repository, a postgres:// or postgresql://
// URL selects Postgres.
func WithDatabaseURL(rawURL string) Option {
	return func(c *ServerConfig) error {
		return applyDatabaseURL(c, rawURL)
	}
}

// WithMaxConns bounds the database connection pool.
func WithMaxConns(n int32) Option {
	return func(c *ServerConfig) error {
		if n > 0 {
			c.DBMaxConns = n
		}
		return nil
	}
}

// WithStorageURL selects the blob backend from a storage URL (memory://,
// file:///path, s3://bucket?region=...).
func WithStorageURL(rawURL string) Option {
	return func(c *ServerConfig) error {
		if rawURL == "" {
			return nil
		}
		return applyStorageURL(c, rawURL)
	}
}

// WithEventLogging toggles the logging event sink.
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
