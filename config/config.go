package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	insecureJWTSecret = "change-me"
)

type Config struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	GinMode        string        `yaml:"gin_mode"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AuthRateLimit  int           `yaml:"auth_rate_limit"`
	Database       Database      `yaml:"database"`
	Github         Github        `yaml:"github"`
}

type Database struct {
	Driver string `yaml:"driver"`
	URI    string `yaml:"uri"`
	Name   string `yaml:"name"`
	// ConnectAttempts is how many times startup tries to reach the store.
	ConnectAttempts int `yaml:"connect_attempts"`
}

type Github struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads .env (if present), then the environment, then the optional YAML file at path.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("APP_ENV", "development"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		JWTSecret:      getEnv("JWT_SECRET", insecureJWTSecret),
		TokenTTL:       getDuration("TOKEN_TTL", 5*24*time.Hour),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 20),
		Database: Database{
			Driver:          getEnv("DB_DRIVER", DriverMongo),
			URI:             getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
			Name:            getEnv("MONGODB_DATABASE", "devconnector"),
			ConnectAttempts: getInt("DB_CONNECT_ATTEMPTS", 3),
		},
		Github: Github{
			BaseURL: getEnv("GITHUB_BASE_URL", "https://api.github.com"),
			Token:   os.Getenv("GITHUB_TOKEN"),
			Timeout: getDuration("GITHUB_TIMEOUT", 5*time.Second),
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && c.Env != "development" {
		return errors.New("jwt_secret must be changed outside development")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("database.uri and database.name are required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.ConnectAttempts < 1 {
		c.Database.ConnectAttempts = 1
	}

	if c.Github.Timeout <= 0 {
		c.Github.Timeout = 5 * time.Second
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
