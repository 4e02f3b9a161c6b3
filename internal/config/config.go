package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	envPort                  = "PORT"
	envEnvironment           = "ENVIRONMENT"
	envLogLevel              = "LOG_LEVEL"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envStorageEndpoint       = "STORAGE_ENDPOINT"
	envStorageRegion         = "STORAGE_REGION"
	envStorageAccessKey      = "STORAGE_ACCESS_KEY"
	envStorageSecretKey      = "STORAGE_SECRET_KEY"
	envStorageBucket         = "STORAGE_BUCKET"
	envStoragePrefix         = "STORAGE_PREFIX"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY"
	envDownloadURLExpiry     = "DOWNLOAD_URL_EXPIRY"
	envPublicSlugStyle       = "PUBLIC_SLUG_STYLE"
	envDefaultPageSize       = "DEFAULT_PAGE_SIZE"
	envMaxPageSize           = "MAX_PAGE_SIZE"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
)

const (
	defaultServerPort         = "8080"
	defaultEnvironment        = "development"
	defaultLogLevel           = "info"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "filedock"
	defaultDBUser             = "filedock_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultStorageRegion      = "garage"
	defaultStorageBucket      = "filedock"
	defaultStoragePrefix      = "filedock"
	defaultJWTExpiry          = 60 * time.Minute
	defaultDownloadURLExpiry  = 15 * time.Minute
	defaultPublicSlugStyle    = "readable"
	defaultDefaultPageSize    = 20
	defaultMaxPageSize        = 100
	defaultMaxUploadSize      = int64(1024 * 1024 * 1024)
	minJWTSecretLength        = 32

	errDBPasswordRequiredFmt   = "%s must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errStorageKeyRequiredFmt   = "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY must be set"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type AppConfig struct {
	DownloadURLExpiry time.Duration
	// SlugStyle picks the shape of generated public slugs: "readable"
	// (adjective-noun-xxxx) or "short" (xxxx-xxxx).
	SlugStyle       string
	DefaultPageSize int
	MaxPageSize     int
	MaxUploadSize   int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			Environment:     getEnv(envEnvironment, defaultEnvironment),
			LogLevel:        getEnv(envLogLevel, defaultLogLevel),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv(envStorageEndpoint),
			Region:    getEnv(envStorageRegion, defaultStorageRegion),
			AccessKey: os.Getenv(envStorageAccessKey),
			SecretKey: os.Getenv(envStorageSecretKey),
			Bucket:    getEnv(envStorageBucket, defaultStorageBucket),
			Prefix:    getEnv(envStoragePrefix, defaultStoragePrefix),
		},
		JWT: JWTConfig{
			Secret: os.Getenv(envJWTSecret),
			Expiry: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		App: AppConfig{
			DownloadURLExpiry: getDurationEnv(envDownloadURLExpiry, defaultDownloadURLExpiry),
			SlugStyle:         getEnv(envPublicSlugStyle, defaultPublicSlugStyle),
			DefaultPageSize:   getIntEnv(envDefaultPageSize, defaultDefaultPageSize),
			MaxPageSize:       getIntEnv(envMaxPageSize, defaultMaxPageSize),
			MaxUploadSize:     getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt, envDBPassword)
	}

	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return fmt.Errorf(errStorageKeyRequiredFmt)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	return nil
}

// DSN returns the postgres connection string for pgxpool.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt64Env(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
