package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory" // sqlite in memory

	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	Host       string `mapstructure:"DB_HOST"`
	User       string `mapstructure:"DB_USER"`
	Password   string `mapstructure:"DB_PASSWORD"`
	Name       string `mapstructure:"DB_NAME"`
	DBPort     string `mapstructure:"DB_PORT"`
	SSLMode    string `mapstructure:"DB_SSLMODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	JWTKey string        `mapstructure:"JWT_KEY"`
	JWTTTL time.Duration `mapstructure:"JWT_TTL"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`

	StorageDriver    string `mapstructure:"STORAGE_DRIVER"`
	StorageLocalDir  string `mapstructure:"STORAGE_LOCAL_DIR"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3BucketName      string `mapstructure:"S3_BUCKET_NAME"`
	S3UseSSL          bool   `mapstructure:"S3_USE_SSL"`
	S3PublicURL       string `mapstructure:"S3_PUBLIC_URL"`

	MaxUploadSize int64    `mapstructure:"MAX_UPLOAD_SIZE"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"SERVER_PORT":          "8080",
	"ENVIRONMENT":          "production",
	"LOG_LEVEL":            "info",
	"DB_DRIVER":            DriverPostgres,
	"DB_HOST":              "",
	"DB_USER":              "",
	"DB_PASSWORD":          "",
	"DB_NAME":              "",
	"DB_PORT":              "5432",
	"DB_SSLMODE":           "disable",
	"SQLITE_PATH":          "chathub.db",
	"JWT_KEY":              "",
	"JWT_TTL":              24 * time.Hour,
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"PROFILE_CACHE_TTL":    5 * time.Minute,
	"STORAGE_DRIVER":       StorageLocal,
	"STORAGE_LOCAL_DIR":    "./public/images",
	"STORAGE_PUBLIC_URL":   "http://localhost:8080/images",
	"S3_ENDPOINT":          "",
	"S3_REGION":            "us-east-1",
	"S3_ACCESS_KEY_ID":     "",
	"S3_SECRET_ACCESS_KEY": "",
	"S3_BUCKET_NAME":       "",
	"S3_USE_SSL":           false,
	"S3_PUBLIC_URL":        "",
	"MAX_UPLOAD_SIZE":      int64(1 << 20),
	"CORS_ORIGINS":         []string{"http://localhost:3000"},
}

// Load reads configuration from an optional .env file in the working
// directory and from the environment, which takes precedence.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.JWTKey == "" {
		return fmt.Errorf("JWT_KEY is required")
	}

	switch c.DBDriver {
	case DriverPostgres:
		for key, value := range map[string]string{
			"DB_HOST":     c.Host,
			"DB_USER":     c.User,
			"DB_PASSWORD": c.Password,
			"DB_NAME":     c.Name,
			"DB_PORT":     c.DBPort,
		} {
			if value == "" {
				return fmt.Errorf("%s is required", key)
			}
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.StorageLocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required")
		}
	case StorageS3:
		if c.S3BucketName == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required for s3 storage")
		}
	case StorageMinio:
		if c.S3BucketName == "" || c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" {
			return fmt.Errorf("S3_BUCKET_NAME, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for minio storage")
		}
		if c.S3Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required for minio storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.DBPort, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
