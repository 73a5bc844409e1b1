package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Provider  ProviderConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	NATSURL   string
	CLAMAVURL string
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port string
}

// ProviderConfig selects the storage backend once per process.
type ProviderConfig struct {
	// Variant is "local" or "remote".
	Variant   string
	UploadDir string
	MinIO     MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects the metadata store driver.
type StoreConfig struct {
	// Driver is "memory" or "postgres".
	Driver   string
	Database DatabaseConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type TracingConfig struct {
	Enabled bool
	Service string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Provider: ProviderConfig{
			Variant:   getEnv("STORAGE_PROVIDER", "local"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("MINIO_BUCKET", "images"),
				UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
			},
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "memory"),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "imageuser"),
				Password: getEnv("DB_PASSWORD", "imagepassword"),
				DBName:   getEnv("DB_NAME", "imagehost"),
				SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			},
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		NATSURL:   getEnv("NATS_URL", ""),
		CLAMAVURL: getEnv("CLAMAV_URL", ""),
		Tracing: TracingConfig{
			Enabled: getEnv("DD_TRACE_ENABLED", "false") == "true",
			Service: getEnv("DD_SERVICE", "image-service"),
		},
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
