// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, message queues, external AI and mail
// services, and operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// message queues, AI gateway) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Auth        AuthConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Storage     StorageConfig
	AI          AIConfig
	Gmail       GmailConfig
	Extractor   ExtractorConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
	MaxUploadBytes  int64         // Upper bound for multipart file uploads
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	EmailTopic        string // Topic carrying email ingestion jobs
	NotificationTopic string // Topic carrying user notification events
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue; empty disables the DLQ
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// StorageConfig contains object storage configuration
type StorageConfig struct {
	Bucket           string // GCS bucket holding raw documents
	CredentialsFile  string // Optional service account file; ADC when empty
	OperationTimeout time.Duration
}

// AIConfig contains AI gateway configuration
type AIConfig struct {
	GeminiAPIKey   string
	Model          string
	RequestTimeout time.Duration
}

// GmailConfig contains Gmail ingestion configuration
type GmailConfig struct {
	Enabled         bool
	CredentialsFile string
	UserID          string // Gmail user, normally the literal "me"
	Query           string // Gmail search query selecting candidate messages
	PollInterval    time.Duration
	MaxResults      int64
}

// ExtractorConfig contains external content extractor configuration
type ExtractorConfig struct {
	PythonBin       string        // Interpreter used to run the extractor script
	ScriptPath      string        // Path to the extractor script
	Timeout         time.Duration // Hard per-file subprocess deadline
	MinTrustedChars int           // Minimum text length before the result is trusted
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if c.Server.MaxUploadBytes <= 0 {
		validationErrors = append(validationErrors, "SERVER_MAX_UPLOAD_BYTES must be greater than 0")
	}

	// Validate Auth config
	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		validationErrors = append(validationErrors, "JWT_TOKEN_TTL must be greater than 0")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		validationErrors = append(validationErrors, "BCRYPT_COST must be between 4 and 31")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EmailTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_EMAIL_TOPIC is required")
	}
	if c.Kafka.NotificationTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_NOTIFICATION_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Storage config
	if c.Storage.Bucket == "" {
		validationErrors = append(validationErrors, "GCS_BUCKET is required")
	}
	if c.Storage.OperationTimeout <= 0 {
		validationErrors = append(validationErrors, "GCS_OPERATION_TIMEOUT must be greater than 0")
	}

	// Validate AI config
	if c.AI.GeminiAPIKey == "" {
		validationErrors = append(validationErrors, "GEMINI_API_KEY is required")
	}
	if c.AI.Model == "" {
		validationErrors = append(validationErrors, "GEMINI_MODEL is required")
	}
	if c.AI.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "AI_REQUEST_TIMEOUT must be greater than 0")
	}

	// Validate Gmail config. Credentials are only needed when polling is on.
	if c.Gmail.Enabled {
		if c.Gmail.CredentialsFile == "" {
			validationErrors = append(validationErrors, "GMAIL_CREDENTIALS_FILE is required when GMAIL_ENABLED is true")
		}
		if c.Gmail.PollInterval <= 0 {
			validationErrors = append(validationErrors, "GMAIL_POLL_INTERVAL must be greater than 0")
		}
		if c.Gmail.MaxResults <= 0 {
			validationErrors = append(validationErrors, "GMAIL_MAX_RESULTS must be greater than 0")
		}
	}

	// Validate Extractor config
	if c.Extractor.PythonBin == "" {
		validationErrors = append(validationErrors, "EXTRACTOR_PYTHON_BIN is required")
	}
	if c.Extractor.ScriptPath == "" {
		validationErrors = append(validationErrors, "EXTRACTOR_SCRIPT_PATH is required")
	}
	if c.Extractor.Timeout <= 0 {
		validationErrors = append(validationErrors, "EXTRACTOR_TIMEOUT must be greater than 0")
	}
	if c.Extractor.MinTrustedChars < 0 {
		validationErrors = append(validationErrors, "EXTRACTOR_MIN_TRUSTED_CHARS cannot be negative")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
