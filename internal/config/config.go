package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is used when POS_API_BASE_URL is unset.
	DefaultBaseURL = "http://localhost:3000/api"
	// PlatformAndroidEmulator rewrites localhost to the emulator's host alias.
	PlatformAndroidEmulator = "android-emulator"
	emulatorHostAlias       = "10.0.2.2"
)

// Store drivers.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config aggregates runtime configuration for the client and the demo backend.
type Config struct {
	App      AppConfig
	API      APIConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Logger   LoggerConfig
	Backend  BackendConfig
}

// AppConfig describes the running binary.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig holds the resolved backend location. It is immutable after Load.
type APIConfig struct {
	baseURL            string
	Platform           string
	TimeoutSeconds     int
	RefreshSkewSeconds int
	TaxRate            float64
}

// StoreConfig selects the key-value backend behind the token store.
type StoreConfig struct {
	Driver           string
	FilePath         string
	EncryptionSecret string
	RedisPrefix      string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AMQPConfig configures the optional event bridge. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// BackendConfig configures the demo backend served by cmd/devserver.
type BackendConfig struct {
	Host                  string
	Port                  string
	BasePath              string
	JWTSecret             string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	BcryptCost            int
	RequestTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	platform := strings.ToLower(getEnv("POS_PLATFORM", ""))
	baseURL, err := ResolveBaseURL(os.Getenv("POS_API_BASE_URL"), platform)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "tablepos"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			baseURL:            baseURL,
			Platform:           platform,
			TimeoutSeconds:     getEnvAsInt("POS_HTTP_TIMEOUT_SECONDS", 0),
			RefreshSkewSeconds: getEnvAsInt("POS_REFRESH_SKEW_SECONDS", 30),
			TaxRate:            getEnvAsFloat("POS_TAX_RATE", 0.10),
		},
		Store: StoreConfig{
			Driver:           strings.ToLower(getEnv("POS_STORE_DRIVER", StoreFile)),
			FilePath:         getEnv("POS_STORE_PATH", defaultStorePath()),
			EncryptionSecret: os.Getenv("POS_STORE_SECRET"),
			RedisPrefix:      getEnv("POS_STORE_REDIS_PREFIX", "tablepos:"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "pos_events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Backend: BackendConfig{
			Host:                  getEnv("DEVSERVER_HOST", "0.0.0.0"),
			Port:                  getEnv("DEVSERVER_PORT", "3000"),
			BasePath:              getEnv("DEVSERVER_BASE_PATH", "/api"),
			JWTSecret:             getEnv("DEVSERVER_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("DEVSERVER_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenTTLHours:  getEnvAsInt("DEVSERVER_REFRESH_TOKEN_TTL_HOURS", 24*7),
			BcryptCost:            getEnvAsInt("DEVSERVER_BCRYPT_COST", 10),
			RequestTimeoutSeconds: getEnvAsInt("DEVSERVER_REQUEST_TIMEOUT_SECONDS", 30),
		},
	}

	return cfg, nil
}

// NewAPIConfig builds an APIConfig around an already resolved base URL.
func NewAPIConfig(baseURL string) APIConfig {
	return APIConfig{
		baseURL:            strings.TrimRight(baseURL, "/"),
		RefreshSkewSeconds: 30,
		TaxRate:            0.10,
	}
}

// ResolveBaseURL applies the fallback host and the emulator rewrite.
func ResolveBaseURL(raw, platform string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid POS_API_BASE_URL %q", raw)
	}
	if platform == PlatformAndroidEmulator {
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" {
			if port := u.Port(); port != "" {
				u.Host = net.JoinHostPort(emulatorHostAlias, port)
			} else {
				u.Host = emulatorHostAlias
			}
		}
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// WithBaseURL returns a copy pointing at another, already resolved base URL.
func (a APIConfig) WithBaseURL(baseURL string) APIConfig {
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

// BaseURL returns the resolved backend base URL without a trailing slash.
func (a APIConfig) BaseURL() string {
	return a.baseURL
}

// Timeout returns the HTTP client timeout; zero keeps the client default.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RefreshSkew is how early an expiring access token is refreshed.
func (a APIConfig) RefreshSkew() time.Duration {
	if a.RefreshSkewSeconds < 0 {
		return 0
	}
	return time.Duration(a.RefreshSkewSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (b BackendConfig) Addr() string {
	return fmt.Sprintf("%s:%s", b.Host, b.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".tablepos-session.json"
	}
	return dir + string(os.PathSeparator) + "tablepos" + string(os.PathSeparator) + "session.json"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
