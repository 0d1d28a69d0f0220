package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	clowder "github.com/redhatinsights/app-common-go/pkg/api/v1"

	"turbo-export/internal/core/domain"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Kafka     KafkaConfig     `json:"kafka"`
	Metrics   MetricsConfig   `json:"metrics"`
	Export    ExportConfig    `json:"export"`
	Retention RetentionConfig `json:"retention"`

	// JobCompletionNotifierImpl selects the notifier: null or notifications
	JobCompletionNotifierImpl string `json:"job_completion_notifier_impl"`
}

type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"` // bounds the synchronous export inside a request
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig selects the run history store. Path is used by sqlite, the
// connection fields by postgres, and memory needs neither.
type DatabaseConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`

	MaxOpenConnections    int           `json:"max_open_connections"`
	MaxIdleConnections    int           `json:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `json:"connection_max_lifetime"`
}

// ConnectionString returns a PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode)
}

// KafkaConfig configures the completion notification producer.
type KafkaConfig struct {
	Enabled         bool          `json:"enabled"`
	Brokers         []string      `json:"brokers"`
	Topic           string        `json:"topic"`
	ClientID        string        `json:"client_id"`
	Timeout         time.Duration `json:"timeout"`
	Retries         int           `json:"retries"`
	CompressionType string        `json:"compression_type"` // none, gzip, snappy, lz4, zstd
	RequiredAcks    int           `json:"required_acks"`    // 1 leader, -1 all replicas
	SASL            SASLConfig    `json:"sasl"`
	TLS             TLSConfig     `json:"tls"`
}

type SASLConfig struct {
	Enabled   bool   `json:"enabled"`
	Mechanism string `json:"mechanism"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type TLSConfig struct {
	Enabled            bool   `json:"enabled"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	CAFile             string `json:"ca_file"`
	CertFile           string `json:"cert_file"`
	KeyFile            string `json:"key_file"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// ExportConfig contains export engine settings
type ExportConfig struct {
	// OutputDir confines every file written on behalf of an HTTP request
	OutputDir         string `json:"output_dir"`
	SharedPoolWorkers int    `json:"shared_pool_workers"`
	SharedPoolQueue   int    `json:"shared_pool_queue"`
	// DefaultsFile is an optional YAML or JSON file of request defaults
	DefaultsFile string `json:"defaults_file"`
}

// RetentionConfig controls pruning of finished runs from the history store.
type RetentionConfig struct {
	Enabled  bool          `json:"enabled"`
	Schedule string        `json:"schedule"`
	MaxAge   time.Duration `json:"max_age"`
}

// LoadConfig reads the environment, lets Clowder override the values it
// provides, and validates the result.
func LoadConfig() (*Config, error) {
	var clowderConfig *clowder.AppConfig
	if clowder.IsClowderEnabled() {
		log.Println("[CONFIG] Clowder enabled")

		clowderConfig = clowder.LoadedConfig
		if clowderConfig == nil {
			return nil, fmt.Errorf("failed to load Clowder configuration (nil)")
		}
	}

	config := &Config{
		Server:                    loadServerConfig(clowderConfig),
		Database:                  loadDatabaseConfig(clowderConfig),
		Kafka:                     loadKafkaConfig(clowderConfig),
		Metrics:                   loadMetricsConfig(clowderConfig),
		Export:                    loadExportConfig(),
		Retention:                 loadRetentionConfig(),
		JobCompletionNotifierImpl: getEnv("JOB_COMPLETION_NOTIFIER_IMPL", "null"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig(clowderConfig *clowder.AppConfig) ServerConfig {
	port := getEnvAsInt("PORT", 8000)
	if clowderConfig != nil && clowderConfig.PublicPort != nil {
		port = *clowderConfig.PublicPort
	}

	return ServerConfig{
		Port:            port,
		Host:            getEnv("HOST", "0.0.0.0"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 5*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig(clowderConfig *clowder.AppConfig) DatabaseConfig {
	db := DatabaseConfig{
		Type:                  getEnv("DB_TYPE", "sqlite"),
		Path:                  getEnv("DB_PATH", "./export_runs.db"),
		Host:                  getEnv("DB_HOST", "localhost"),
		Port:                  getEnvAsInt("DB_PORT", 5432),
		Name:                  getEnv("DB_NAME", "turbo_export"),
		Username:              getEnv("DB_USERNAME", ""),
		Password:              getEnv("DB_PASSWORD", ""),
		SSLMode:               getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConnections:    getEnvAsInt("DB_MAX_OPEN_CONNECTIONS", 25),
		MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", 5*time.Minute),
	}

	// A Clowder-provisioned database is always PostgreSQL
	if clowderConfig != nil && clowderConfig.Database != nil {
		db.Type = "postgres"
		db.Host = clowderConfig.Database.Hostname
		db.Port = clowderConfig.Database.Port
		db.Name = clowderConfig.Database.Name
		db.Username = clowderConfig.Database.Username
		db.Password = clowderConfig.Database.Password
		db.SSLMode = clowderConfig.Database.SslMode
	}

	return db
}

func loadKafkaConfig(clowderConfig *clowder.AppConfig) KafkaConfig {
	kafka := KafkaConfig{
		Brokers:         getEnvAsStringSlice("KAFKA_BROKERS", []string{}),
		Topic:           getEnv("KAFKA_TOPIC", "platform.notifications.ingress"),
		ClientID:        getEnv("KAFKA_CLIENT_ID", "turbo-export"),
		Timeout:         getEnvAsDuration("KAFKA_TIMEOUT", 30*time.Second),
		Retries:         getEnvAsInt("KAFKA_RETRIES", 5),
		CompressionType: getEnv("KAFKA_COMPRESSION", "snappy"),
		RequiredAcks:    getEnvAsInt("KAFKA_REQUIRED_ACKS", -1),
		SASL: SASLConfig{
			Enabled:   getEnvAsBool("KAFKA_SASL_ENABLED", false),
			Mechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			Username:  getEnv("KAFKA_SASL_USERNAME", ""),
			Password:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		TLS: TLSConfig{
			Enabled:            getEnvAsBool("KAFKA_TLS_ENABLED", false),
			InsecureSkipVerify: getEnvAsBool("KAFKA_TLS_INSECURE_SKIP_VERIFY", false),
			CAFile:             getEnv("KAFKA_TLS_CA_FILE", ""),
			CertFile:           getEnv("KAFKA_TLS_CERT_FILE", ""),
			KeyFile:            getEnv("KAFKA_TLS_KEY_FILE", ""),
		},
	}
	kafka.Enabled = len(kafka.Brokers) > 0

	if clowderConfig == nil || clowderConfig.Kafka == nil {
		return kafka
	}

	kafka.Enabled = true
	kafka.Brokers = kafka.Brokers[:0]
	for _, broker := range clowderConfig.Kafka.Brokers {
		kafka.Brokers = append(kafka.Brokers, fmt.Sprintf("%s:%d", broker.Hostname, *broker.Port))
	}

	// Clowder may rename the requested topic
	for _, topicConfig := range clowderConfig.Kafka.Topics {
		if topicConfig.RequestedName == kafka.Topic || topicConfig.Name == kafka.Topic {
			kafka.Topic = topicConfig.Name
			break
		}
	}

	if len(clowderConfig.Kafka.Brokers) > 0 && clowderConfig.Kafka.Brokers[0].Sasl != nil {
		sasl := clowderConfig.Kafka.Brokers[0].Sasl
		kafka.SASL.Enabled = true
		if sasl.SaslMechanism != nil {
			kafka.SASL.Mechanism = *sasl.SaslMechanism
		}
		if sasl.Username != nil {
			kafka.SASL.Username = *sasl.Username
		}
		if sasl.Password != nil {
			kafka.SASL.Password = *sasl.Password
		}
	}

	return kafka
}

func loadMetricsConfig(clowderConfig *clowder.AppConfig) MetricsConfig {
	metrics := MetricsConfig{
		Enabled: getEnvAsBool("METRICS_ENABLED", true),
		Port:    getEnvAsInt("METRICS_PORT", 9000),
		Path:    getEnv("METRICS_PATH", "/metrics"),
	}
	if clowderConfig != nil {
		metrics.Port = clowderConfig.MetricsPort
		metrics.Path = clowderConfig.MetricsPath
	}
	return metrics
}

func loadExportConfig() ExportConfig {
	return ExportConfig{
		OutputDir:         getEnv("EXPORT_OUTPUT_DIR", "./exports"),
		SharedPoolWorkers: getEnvAsInt("EXPORT_SHARED_POOL_WORKERS", domain.DefaultWorkers),
		SharedPoolQueue:   getEnvAsInt("EXPORT_SHARED_POOL_QUEUE", 1000),
		DefaultsFile:      getEnv("EXPORT_DEFAULTS_FILE", ""),
	}
}

func loadRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Enabled:  getEnvAsBool("RUN_RETENTION_ENABLED", true),
		Schedule: getEnv("RUN_RETENTION_SCHEDULE", "@daily"),
		MaxAge:   getEnvAsDuration("RUN_RETENTION_MAX_AGE", 30*24*time.Hour),
	}
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !validPort(c.Server.Port) {
		fail("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Enabled && !validPort(c.Metrics.Port) {
		fail("invalid metrics port: %d", c.Metrics.Port)
	}

	switch c.Database.Type {
	case "memory":
	case "sqlite":
		if c.Database.Path == "" {
			fail("database path is required for SQLite")
		}
	case "postgres":
		if c.Database.Host == "" {
			fail("database host is required for postgres")
		}
	case "":
		fail("database type is required")
	default:
		fail("unsupported database type: %s", c.Database.Type)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			fail("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			fail("kafka topic is required when kafka is enabled")
		}
	}

	if c.Export.OutputDir == "" {
		fail("export output directory is required")
	}
	if c.Export.SharedPoolWorkers < 1 {
		fail("invalid shared pool workers: %d", c.Export.SharedPoolWorkers)
	}
	if c.Export.SharedPoolQueue < 1 {
		fail("invalid shared pool queue capacity: %d", c.Export.SharedPoolQueue)
	}

	if c.Retention.Enabled {
		if !domain.IsValidSchedule(c.Retention.Schedule) {
			fail("invalid retention schedule: %q", c.Retention.Schedule)
		}
		if c.Retention.MaxAge <= 0 {
			fail("retention max age must be positive: %v", c.Retention.MaxAge)
		}
	}

	switch c.JobCompletionNotifierImpl {
	case "null":
	case "notifications":
		if !c.Kafka.Enabled {
			fail("kafka must be enabled for the notifications notifier")
		}
	default:
		fail("unsupported job completion notifier: %s", c.JobCompletionNotifierImpl)
	}

	return errors.Join(errs...)
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsStringSlice splits a comma separated value, dropping blank entries.
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
