// Package config builds the process configuration once at startup from
// environment variables. The struct is passed by reference into every
// component that needs it; nothing reads the environment afterwards.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	DatabaseDSN
	Tokens  TokenConfig
	CORS    CORSConfig
	Storage StorageConfig
}

type DatabaseDSN struct {
	DSN string
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type CORSConfig struct {
	AllowedOrigin string
}

type StorageConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL is the CDN/static prefix objects are served from.
	PublicBaseURL string
}

// Load reads the environment into a Config. Required values without a
// usable default produce an error instead of a silently broken process.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  ":" + envOr("PORT", "8080"),
		DatabaseDSN: DatabaseDSN{DSN: envOr("DATABASE_DSN", "file:streamhub.db")},
		Tokens: TokenConfig{
			AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
			RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
			Issuer:        envOr("TOKEN_ISSUER", "streamhub"),
		},
		CORS: CORSConfig{
			AllowedOrigin: envOr("CORS_ORIGIN", "*"),
		},
		Storage: StorageConfig{
			Region:        envOr("STORAGE_REGION", "us-east-1"),
			Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:        envOr("STORAGE_BUCKET", "streamhub-media"),
			PublicBaseURL: os.Getenv("STORAGE_PUBLIC_URL"),
		},
	}

	var err error
	if cfg.Tokens.AccessTTL, err = durationOr("ACCESS_TOKEN_EXPIRY", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Tokens.RefreshTTL, err = durationOr("REFRESH_TOKEN_EXPIRY", 240*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Tokens.AccessSecret == "" || cfg.Tokens.RefreshSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}

	if cfg.Tokens.AccessSecret == cfg.Tokens.RefreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return cfg, nil
}

// auth.Config implementation

func (c *Config) GetAccessTokenSecret() string      { return c.Tokens.AccessSecret }
func (c *Config) GetRefreshTokenSecret() string     { return c.Tokens.RefreshSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.Tokens.AccessTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.Tokens.RefreshTTL }
func (c *Config) GetIssuer() string                 { return c.Tokens.Issuer }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s: %w", key, err)
	}

	return d, nil
}
