package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	DatabaseURL   string        `yaml:"databaseUrl"`
	SchemaPath    string        `yaml:"schemaPath"`
	JWTSecret     string        `yaml:"jwtSecret"`
	TokenLifetime time.Duration `yaml:"tokenLifetime"`
	BcryptCost    int           `yaml:"bcryptCost"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`
}

// Defaults is the configuration used when nothing overrides a value. An
// empty DatabaseURL selects the in-memory store.
func Defaults() Config {
	return Config{
		Addr:           ":8080",
		SchemaPath:     "schema.sql",
		TokenLifetime:  24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "text",
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// LoadConfig layers, lowest precedence first: Defaults, the optional YAML
// file at path, the optional dotenv file, then the process environment.
func LoadConfig(path, envFile string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg.Addr = getenv("ADDR", cfg.Addr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SchemaPath = getenv("SCHEMA_PATH", cfg.SchemaPath)
	cfg.JWTSecret = getenv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)

	lifeHours := getenv("TOKEN_LIFETIME_HOURS", "")
	if lifeHours != "" {
		dur, err := time.ParseDuration(lifeHours + "h")
		if err != nil {
			return Config{}, fmt.Errorf("TOKEN_LIFETIME_HOURS: %w", err)
		}
		cfg.TokenLifetime = dur
	}
	if v := getenv("RATE_LIMIT_RPS", ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST", ""); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = burst
	}
	if v := getenv("BCRYPT_COST", ""); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenLifetime <= 0 {
		return errors.New("token lifetime must be positive")
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// NewLogger builds the process logger from LogLevel and LogFormat ("text"
// or "json").
func NewLogger(cfg Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(level)
	switch cfg.LogFormat {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return l, nil
}

func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
