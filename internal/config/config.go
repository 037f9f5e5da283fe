package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is the development signing secret. It is rejected when Env is "prod".
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Port string `yaml:"port"`

	DBHost string `yaml:"db_host"`
	DBPort string `yaml:"db_port"`
	DBName string `yaml:"db_name"`
	DBUser string `yaml:"db_user"`
	DBPass string `yaml:"db_pass"`

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int `yaml:"db_max_open_conns"`
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int `yaml:"db_max_idle_conns"`

	// Store is "postgres" (default) or "memory". The memory store loses data on exit.
	Store string `yaml:"store"`

	JWTSecret string `yaml:"jwt_secret"`

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string `yaml:"env"`

	// TokenTTLMinutes is the session lifetime in minutes (default 30). Set via TOKEN_TTL_MINUTES.
	TokenTTLMinutes int `yaml:"token_ttl_minutes"`

	// BcryptCost is the password hashing cost (default 10, bcrypt.MinCost to bcrypt.MaxCost).
	BcryptCost int `yaml:"bcrypt_cost"`

	// CookieSecure marks the session cookie Secure. Turn on behind HTTPS.
	CookieSecure bool `yaml:"cookie_secure"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the server listens with plain HTTP.
	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string `yaml:"log_format"`
	// LogLevel is debug, info (default), warn or error.
	LogLevel string `yaml:"log_level"`

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// AuthRateLimit is requests per minute per IP on the login and signup routes (default 30).
	AuthRateLimit int `yaml:"auth_rate_limit"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port: "8080",

		DBHost: "localhost",
		DBPort: "5432",
		DBName: "catalog",
		DBUser: "catalog",
		DBPass: "catalog",

		DBMaxOpenConns: 25,
		DBMaxIdleConns: 5,

		Store: "postgres",

		JWTSecret:       DefaultJWTSecret,
		Env:             "dev",
		TokenTTLMinutes: 30,
		BcryptCost:      10,

		LogFormat: "text",
		LogLevel:  "info",

		AuthRateLimit: 30,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is loaded into the environment first; existing variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)

	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPass = getEnv("DB_PASS", cfg.DBPass)

	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)

	cfg.Store = getEnv("STORE", cfg.Store)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.TokenTTLMinutes = getEnvInt("TOKEN_TTL_MINUTES", cfg.TokenTTLMinutes)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.CookieSecure)

	// Optional TLS configuration for HTTPS.
	cfg.TLSCertFile = getEnv("TLS_CERT_FILE", cfg.TLSCertFile)
	cfg.TLSKeyFile = getEnv("TLS_KEY_FILE", cfg.TLSKeyFile)

	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = parseCORSOrigins(v)
	}
	cfg.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", cfg.AuthRateLimit)
}

// Validate rejects configurations that must not reach production.
func (c Config) Validate() error {
	switch c.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE must be postgres or memory, got %q", c.Store)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Env == "prod" {
		if c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be set to a non-default value when ENV=prod")
		}
		if c.Store == "memory" {
			return errors.New("STORE=memory is not allowed when ENV=prod")
		}
	}
	return nil
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
