package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in APP_STORE.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable; nested structs group the optional
// subsystems that have their own loaders.
type Config struct {
	Env   string // application environment (e.g. "development", "production")
	Port  string // HTTP port to listen on
	Store string // persistence driver: "mysql" or "memory"

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTIssuer     string        // iss claim of issued tokens
	AccessSecret  string        // secret used to sign access tokens
	AccessTTL     time.Duration // access token lifetime
	RefreshSecret string        // secret used to sign refresh tokens
	RefreshTTL    time.Duration // refresh token lifetime

	BcryptCost int    // bcrypt cost for password hashing
	LogLevel   string // zerolog level name
	RabbitURL  string // AMQP URL for session events; empty disables publishing

	RootEmail    string // seeded ROOT account (optional)
	RootPassword string

	SessionCache SessionCacheConfig
	RateLimit    RateLimitConfig
}

// Production reports whether the process runs in the production environment.
func (c Config) Production() bool { return c.Env == "production" }

// Load reads configuration from the environment after loading an optional
// .env file.  Every missing required variable is reported in one error so
// a misconfigured deployment fails with the full list.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	var missing []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}

	cfg := Config{
		Env:           envStr("APP_ENV", "development"),
		Port:          envStr("APP_PORT", "8080"),
		Store:         envStr("APP_STORE", StoreMySQL),
		JWTIssuer:     envStr("JWT_ISSUER", "memo-auth-api"),
		AccessSecret:  must("JWT_ACCESS_SECRET"),
		AccessTTL:     time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshSecret: must("JWT_REFRESH_SECRET"),
		RefreshTTL:    time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:    envInt("BCRYPT_COST", 12),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		RootEmail:     os.Getenv("ROOT_EMAIL"),
		RootPassword:  os.Getenv("ROOT_PASSWORD"),
		SessionCache:  LoadSessionCacheConfig(),
		RateLimit:     LoadRateLimitConfig(),
	}

	switch cfg.Store {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		missing = append(missing, fmt.Errorf("invalid APP_STORE %q: want %s or %s", cfg.Store, StoreMySQL, StoreMemory))
	}

	if cfg.AccessSecret != "" && cfg.AccessSecret == cfg.RefreshSecret {
		missing = append(missing, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if (cfg.RootEmail == "") != (cfg.RootPassword == "") {
		missing = append(missing, errors.New("ROOT_EMAIL and ROOT_PASSWORD must be set together"))
	}
	if err := errors.Join(missing...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
