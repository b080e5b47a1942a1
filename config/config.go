package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	JWTSecret  string
	Database   DatabaseConfig
	Storage    StorageConfig
	MQ         MQConfig
}

// DatabaseConfig holds the store connection values. User, Password and
// DSN come from the environment and are all required; missing any of them
// is a startup failure, not a per-call error.
type DatabaseConfig struct {
	User     string
	Password string
	// DSN is "host:port/dbname".
	DSN          string
	UseSSL       bool
	MaxOpenConns int
	MaxIdleConns int
}

// Host returns the host:port part of the DSN.
func (d DatabaseConfig) Host() string {
	host, _, _ := strings.Cut(d.DSN, "/")
	return host
}

// Name returns the database name part of the DSN, with a leading slash
// for URL building.
func (d DatabaseConfig) Name() string {
	_, name, ok := strings.Cut(d.DSN, "/")
	if !ok {
		return ""
	}
	return "/" + name
}

// StorageConfig selects and configures the dashboard report archive
// backend. Backend is "minio", "gcs" or empty (archive disabled).
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// MQConfig selects and configures the alert broker backend. Backend is
// "rabbitmq", "pubsub" or empty (alerts disabled).
type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// Load reads configuration from the environment. The three database
// values are required; everything else has a default or disables its
// feature when absent.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		DSN:          os.Getenv("DB_DSN"),
		UseSSL:       getEnvBool("DB_USE_SSL", false),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
	}
	if dbConfig.User == "" || dbConfig.Password == "" || dbConfig.DSN == "" {
		return Config{}, errors.New("DB_USER, DB_PASSWORD and DB_DSN are required")
	}

	cfg := Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Database:   dbConfig,
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", ""),
			Minio: MinioConfig{
				Endpoint:  os.Getenv("MINIO_ENDPOINT"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				Bucket:    getEnv("MINIO_BUCKET", "uppath-reports"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				ProjectID:       os.Getenv("GCS_PROJECT_ID"),
				Bucket:          getEnv("GCS_BUCKET", "uppath-reports"),
				CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
			},
		},
		MQ: MQConfig{
			Backend: getEnv("MQ_BACKEND", ""),
			RabbitMQ: RabbitMQConfig{
				URL:           os.Getenv("RABBITMQ_URL"),
				QueueDurable:  getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				PrefetchCount: getEnvInt("RABBITMQ_PREFETCH", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          os.Getenv("PUBSUB_PROJECT_ID"),
				CredentialsFile:    os.Getenv("PUBSUB_CREDENTIALS_FILE"),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return defaultValue
}
