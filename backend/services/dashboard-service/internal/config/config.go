package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "brewdash/backend/libs/config"
)

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Port string `yaml:"port" env:"DASHBOARD_HTTP_PORT"`
}

// RaptConfig points at the hydrometer cloud and holds the portal login.
type RaptConfig struct {
	IdentityURL string        `yaml:"identityUrl" env:"RAPT_IDENTITY_URL"`
	APIURL      string        `yaml:"apiUrl" env:"RAPT_API_URL"`
	ClientID    string        `yaml:"clientId" env:"RAPT_CLIENT_ID"`
	Username    string        `yaml:"username" env:"RAPT_PORTAL_USERNAME"`
	Password    string        `yaml:"password" env:"RAPT_PORTAL_SECRET"`
	Timeout     time.Duration `yaml:"timeout" env:"RAPT_HTTP_TIMEOUT"`
}

// SnapshotConfig controls seed regeneration and where the seed is cached.
// An empty RedisAddr keeps the seed in process memory.
type SnapshotConfig struct {
	Interval      time.Duration `yaml:"interval" env:"SNAPSHOT_INTERVAL"`
	RedisAddr     string        `yaml:"redisAddr" env:"SNAPSHOT_REDIS_ADDR"`
	RedisPassword string        `yaml:"redisPassword" env:"SNAPSHOT_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redisDb" env:"SNAPSHOT_REDIS_DB"`
	RedisKey      string        `yaml:"redisKey" env:"SNAPSHOT_REDIS_KEY"`
	TTL           time.Duration `yaml:"ttl" env:"SNAPSHOT_TTL"`
}

// WSConfig tunes the session websocket.
type WSConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"WS_PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"WS_WRITE_TIMEOUT"`
}

// Config defines dashboard configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Rapt     RaptConfig     `yaml:"rapt"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	WS       WSConfig       `yaml:"ws"`
	CORS     struct {
		AllowedOrigins []string `yaml:"allowedOrigins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`
}

// Defaults returns a config with every optional field filled in.
func Defaults() *Config {
	cfg := &Config{
		HTTP: HTTPConfig{Port: "8080"},
		Rapt: RaptConfig{
			IdentityURL: "https://id.rapt.io",
			APIURL:      "https://api.rapt.io/api",
			ClientID:    "rapt-user",
			Timeout:     10 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Interval: time.Second,
			RedisKey: "brewdash:snapshot",
			TTL:      time.Hour,
		},
		WS: WSConfig{
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
	cfg.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the loader cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Rapt.Password) == "" {
		return errors.New("config: RAPT_PORTAL_SECRET required")
	}
	if strings.TrimSpace(c.Rapt.Username) == "" {
		return errors.New("config: rapt username required")
	}
	if c.Rapt.IdentityURL == "" || c.Rapt.APIURL == "" {
		return errors.New("config: rapt identity and api urls required")
	}
	if c.Snapshot.Interval <= 0 {
		return fmt.Errorf("config: snapshot interval must be positive, got %s", c.Snapshot.Interval)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// UseRedis reports whether the seed cache is shared through Redis.
func (c *Config) UseRedis() bool {
	return strings.TrimSpace(c.Snapshot.RedisAddr) != ""
}
