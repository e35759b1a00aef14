package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	Database  DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Ledger    LedgerConfig
	Directory DirectoryConfig
	QR        QRConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	TokenTTL  time.Duration
	Argon2    Argon2Config
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type LedgerConfig struct {
	SeedDemoData      bool
	DefaultQueryLimit int
	MaxQueryLimit     int
}

type DirectoryConfig struct {
	SeedDefaults bool
}

type QRConfig struct {
	TokenTTL  time.Duration
	ImageSize int
	// MaxPerWindow caps generated tokens per account; 0 disables the limit.
	MaxPerWindow int
	RateWindow   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":     "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"log.level":       "LOG_LEVEL",
	"log.development": "LOG_DEVELOPMENT",

	"storage.driver":      "STORAGE_DRIVER",
	"storage.sqlite_path": "STORAGE_SQLITE_PATH",

	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",

	"redis.enabled":  "REDIS_ENABLED",
	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"auth.enabled":       "AUTH_ENABLED",
	"jwt.secret_key":     "JWT_SECRET_KEY",
	"jwt.expiry_hours":   "JWT_EXPIRY_HOURS",
	"argon2.time":        "ARGON2_TIME",
	"argon2.memory":      "ARGON2_MEMORY",
	"argon2.threads":     "ARGON2_THREADS",
	"argon2.key_length":  "ARGON2_KEY_LENGTH",
	"argon2.salt_length": "ARGON2_SALT_LENGTH",

	"ledger.seed_demo_data":      "LEDGER_SEED_DEMO_DATA",
	"ledger.default_query_limit": "LEDGER_DEFAULT_QUERY_LIMIT",
	"ledger.max_query_limit":     "LEDGER_MAX_QUERY_LIMIT",

	"directory.seed_defaults": "DIRECTORY_SEED_DEFAULTS",

	"qr.token_ttl":      "QR_TOKEN_TTL",
	"qr.image_size":     "QR_IMAGE_SIZE",
	"qr.max_per_window": "QR_MAX_PER_WINDOW",
	"qr.rate_window":    "QR_RATE_WINDOW",

	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.sqlite_path", "mealcard.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "meal_card")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("ledger.seed_demo_data", true)
	v.SetDefault("ledger.default_query_limit", 50)
	v.SetDefault("ledger.max_query_limit", 500)

	v.SetDefault("directory.seed_defaults", true)

	v.SetDefault("qr.token_ttl", 5*time.Minute)
	v.SetDefault("qr.image_size", 256)
	v.SetDefault("qr.max_per_window", 5)
	v.SetDefault("qr.rate_window", time.Hour)

	v.SetDefault("cors.allowed_origins", []string{"https://*", "http://*"})
}

// Load reads configuration from an optional dotenv file and the environment.
// Environment variables win over the file, the file wins over defaults.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		// dotenv keys arrive flat (database_host); they become defaults so the
		// real environment still overrides them.
		for key, env := range envBindings {
			if flat := strings.ToLower(env); v.InConfig(flat) {
				v.SetDefault(key, v.Get(flat))
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(v.GetString("storage.driver")),
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		Database: DBConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Enabled:   v.GetBool("auth.enabled"),
			JWTSecret: v.GetString("jwt.secret_key"),
			TokenTTL:  time.Duration(v.GetInt("jwt.expiry_hours")) * time.Hour,
			Argon2: Argon2Config{
				Time:       v.GetUint32("argon2.time"),
				Memory:     v.GetUint32("argon2.memory"),
				Threads:    uint8(v.GetUint("argon2.threads")),
				KeyLength:  v.GetUint32("argon2.key_length"),
				SaltLength: v.GetInt("argon2.salt_length"),
			},
		},
		Ledger: LedgerConfig{
			SeedDemoData:      v.GetBool("ledger.seed_demo_data"),
			DefaultQueryLimit: v.GetInt("ledger.default_query_limit"),
			MaxQueryLimit:     v.GetInt("ledger.max_query_limit"),
		},
		Directory: DirectoryConfig{
			SeedDefaults: v.GetBool("directory.seed_defaults"),
		},
		QR: QRConfig{
			TokenTTL:     v.GetDuration("qr.token_ttl"),
			ImageSize:    v.GetInt("qr.image_size"),
			MaxPerWindow: v.GetInt("qr.max_per_window"),
			RateWindow:   v.GetDuration("qr.rate_window"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when auth is enabled")
	}
	if c.Ledger.DefaultQueryLimit <= 0 || c.Ledger.MaxQueryLimit < c.Ledger.DefaultQueryLimit {
		return fmt.Errorf("invalid ledger query limits: default=%d max=%d",
			c.Ledger.DefaultQueryLimit, c.Ledger.MaxQueryLimit)
	}
	return nil
}
