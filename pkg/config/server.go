package config

import "time"

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address; empty binds all interfaces.
	Host string

	// Port is the HTTP listen port.
	Port string

	// ReadTimeout bounds request header+body reads.
	ReadTimeout time.Duration

	// WriteTimeout bounds response writes. Synchronous runs can take a
	// while, so this is generous.
	WriteTimeout time.Duration

	// ShutdownTimeout is the grace period for draining requests on exit.
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns the built-in server defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            "8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

func loadServerConfig() (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	cfg.Host = getEnvOrDefault("HTTP_HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("HTTP_PORT", cfg.Port)

	var err error
	if cfg.ReadTimeout, err = envDuration("HTTP_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = envDuration("HTTP_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
