// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	JWTSecret        string
	TokenTTL         time.Duration
	IPHashSalt       string
	RedisAddr        string
	CacheTTL         time.Duration
	LogMode          string
	CORSOrigins      []string
	AllowAdminSignup bool
}

const (
	defaultPort      = 3318
	defaultSQLiteDSN = "file:campus_vote.db"
	defaultTokenTTL  = 30 * 24 * time.Hour
	defaultCacheTTL  = 10 * time.Minute
)

// ParseFlags parses flags, falling back to the environment and then to an
// optional .env file (ENV_FILE, default ".env").
func ParseFlags(args []string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	var corsOrigins, tokenTTL, cacheTTL string

	flags := flag.NewFlagSet("campus-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for the results cache (optional)")
	flags.StringVar(&corsOrigins, "cors", "", "Comma-separated allowed CORS origins")
	flags.StringVar(&cfg.LogMode, "log", "", "Log mode (development, production, test)")
	flags.StringVar(&tokenTTL, "token-ttl", "", "Session token lifetime")
	flags.StringVar(&cacheTTL, "cache-ttl", "", "Results cache lifetime")
	flags.BoolVar(&cfg.AllowAdminSignup, "allow-admin-signup", false, "Allow registering admin accounts")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	flags.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = defaultSQLiteDSN
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.LogMode == "" {
		cfg.LogMode = os.Getenv("LOG_MODE")
	}
	if corsOrigins == "" {
		corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	cfg.CORSOrigins = splitList(corsOrigins)

	if !cfg.AllowAdminSignup {
		if v := os.Getenv("ALLOW_ADMIN_SIGNUP"); v != "" {
			allow, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid ALLOW_ADMIN_SIGNUP env variable")
			}
			cfg.AllowAdminSignup = allow
		}
	}

	var err error
	if cfg.TokenTTL, err = durationOr(tokenTTL, "TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationOr(cacheTTL, "CACHE_TTL", defaultCacheTTL); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func durationOr(flagValue, env string, def time.Duration) (time.Duration, error) {
	v := flagValue
	if v == "" {
		v = os.Getenv(env)
	}
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", env, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
