package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment     string        `mapstructure:"environment" validate:"required,oneof=development staging production test"`
	FrontendURL     string        `mapstructure:"frontend_url" validate:"required,url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// IsProduction reports whether the server runs in the production environment.
// Production hides internal error details from clients.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"gt=0"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time" validate:"gt=0"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// LifecycleConfig controls the simulated deployment pipeline.
type LifecycleConfig struct {
	BuildDuration  time.Duration `mapstructure:"build_duration" validate:"gt=0"`
	DeployDuration time.Duration `mapstructure:"deploy_duration" validate:"gt=0"`
	RecoverOrphans bool          `mapstructure:"recover_orphans"`
}
