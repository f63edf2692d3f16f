// Package config loads application configuration via Viper.
// Values come from environment variables first, with an optional config file
// for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups all application configuration.
type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	DB         DBConfig
	Log        LogConfig
	JWT        JWTConfig
	Migrations MigrationsConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// JWTConfig holds settings for validating externally issued tokens.
type JWTConfig struct {
	Secret string
}

// MigrationsConfig holds schema migration settings.
type MigrationsConfig struct {
	Path string
	Auto bool // run pending migrations on startup
}

// IsDevelopment reports whether the app runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment (CUTLY_ prefix) and an optional
// config file (./config.yaml). Environment always wins.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("CUTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "cutlyai")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.max_conns", 25)
	v.SetDefault("db.min_conns", 5)
	v.SetDefault("db.max_conn_lifetime", time.Hour)
	v.SetDefault("db.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("migrations.path", "migrations")
	v.SetDefault("migrations.auto", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Name: v.GetString("app.name"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		DB: DBConfig{
			URL:             v.GetString("db.url"),
			MaxConns:        v.GetInt32("db.max_conns"),
			MinConns:        v.GetInt32("db.min_conns"),
			MaxConnLifetime: v.GetDuration("db.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("db.max_conn_idle_time"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		Migrations: MigrationsConfig{
			Path: v.GetString("migrations.path"),
			Auto: v.GetBool("migrations.auto"),
		},
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("CUTLY_DB_URL is required")
	}

	return cfg, nil
}
