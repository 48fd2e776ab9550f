package logger

// Option overrides one field of a Config.
type Option func(*Config)

// WithLevel sets the log level; empty keeps the current one.
func WithLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.Level = level
		}
	}
}

// WithOutput sets the log output (console, file, or both)
func WithOutput(output string) Option {
	return func(c *Config) { c.Output = output }
}

// WithDefaultFilename sets the rotating log file path when none is configured.
func WithDefaultFilename(filename string) Option {
	return func(c *Config) {
		if c.File.Filename == "" {
			c.File.Filename = filename
		}
	}
}

// With returns a copy of c with opts applied.
func (c Config) With(opts ...Option) *Config {
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}
