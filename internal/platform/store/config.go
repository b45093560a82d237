package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	MinConns    int32
	LogSQL      bool
	LogArgs     bool // args may carry shared keys, off unless debugging locally
	SlowQueryMs int

	StatementTimeout time.Duration

	ConnectRetries int           // default 20
	RetryEvery     time.Duration // default 500ms
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	Database   string
	ClientRole string
	ClientTag  string
}

func (c PGConfig) withDefaults() PGConfig {
	if c.ConnectRetries <= 0 {
		c.ConnectRetries = 20
	}
	if c.RetryEvery <= 0 {
		c.RetryEvery = 500 * time.Millisecond
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 3 * time.Second
	}
	return c
}
