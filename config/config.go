// Package config holds runtime settings for the account server,
// including compiled defaults and an optional YAML overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration wraps time.Duration so YAML values can use the "10m"/"2h"
// notation.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped value as a plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is built once at startup and passed to the components that need
// it. There is no package-level shared instance.
type Config struct {
	Addr string `yaml:"addr"`

	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	SMTP     SMTP     `yaml:"smtp"`

	Banned Banned `yaml:"banned"`

	CodeTTL      Duration `yaml:"code_ttl"`
	TokenTTL     Duration `yaml:"token_ttl"`
	LongTokenTTL Duration `yaml:"long_token_ttl"`
	GlobalRPM    int      `yaml:"global_rpm"`
	SendEmailRPM int      `yaml:"send_email_rpm"`
}

type Postgres struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type Redis struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
	Pass string `yaml:"pass"`
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Banned carries the denylists applied to usernames and nicknames at
// registration. Loaded once here and handed to the filter at construction.
type Banned struct {
	Username []string `yaml:"username"`
	Nickname []string `yaml:"nickname"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: insecure for production, override via the config file.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.Postgres.DSN = "host=localhost user=postgres password=postgres dbname=account port=5432 sslmode=disable TimeZone=UTC"
	c.Postgres.MaxOpenConns = 100
	c.Postgres.MaxIdleConns = 10
	c.Redis.Addr = "localhost:6379"
	c.SMTP.Port = 587
	c.SMTP.From = "account@mail.pdnode.com"
	c.CodeTTL = Duration(10 * time.Minute)
	c.TokenTTL = Duration(2 * time.Hour)
	c.LongTokenTTL = Duration(7 * 24 * time.Hour)
	c.GlobalRPM = 30
	c.SendEmailRPM = 3
}

// Load builds a Config from defaults, then overlays values from the YAML
// file at path. An empty path skips the overlay; a missing file is an error
// only when a path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// A zero rate would make the limiter interval divide by zero.
	if c.GlobalRPM < 1 {
		return fmt.Errorf("global_rpm must be at least 1, got %d", c.GlobalRPM)
	}
	if c.SendEmailRPM < 1 {
		return fmt.Errorf("send_email_rpm must be at least 1, got %d", c.SendEmailRPM)
	}
	if c.CodeTTL <= 0 || c.TokenTTL <= 0 || c.LongTokenTTL <= 0 {
		return fmt.Errorf("ttl values must be positive")
	}
	return nil
}
