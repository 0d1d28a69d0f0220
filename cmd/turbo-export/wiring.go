package main

import (
	"fmt"
	"io"
	"log"

	"turbo-export/internal/config"
	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/render"
	"turbo-export/internal/core/usecases"
	"turbo-export/internal/shell/executor"
	"turbo-export/internal/shell/messaging"
	"turbo-export/internal/shell/storage"
	"turbo-export/internal/shell/worker"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openRunRepository opens the run history store selected by DB_TYPE and runs
// its schema migrations.
func openRunRepository(cfg *config.Config) (usecases.ExportRunRepository, io.Closer, error) {
	switch cfg.Database.Type {
	case "memory":
		log.Printf("Using in-memory run repository (history is lost on restart)")
		return storage.NewMemoryExportRunRepository(), closerFunc(func() error { return nil }), nil
	case "sqlite":
		repo, err := storage.NewSQLiteExportRunRepository(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite database: %w", err)
		}
		log.Printf("SQLite storage initialized successfully")
		return repo, repo, nil
	case "postgres":
		repo, err := storage.NewPostgresExportRunRepository(postgresOptions(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
		}
		log.Printf("PostgreSQL storage initialized successfully")
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s (must be memory, sqlite or postgres)", cfg.Database.Type)
	}
}

func postgresOptions(cfg *config.Config) storage.PostgresOptions {
	return storage.PostgresOptions{
		ConnectionString:      cfg.Database.ConnectionString(),
		MaxOpenConnections:    cfg.Database.MaxOpenConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	}
}

// newNotifier builds the completion notifier selected by JOB_COMPLETION_NOTIFIER_IMPL.
func newNotifier(cfg *config.Config) (usecases.JobCompletionNotifier, io.Closer, error) {
	switch cfg.JobCompletionNotifierImpl {
	case "notifications":
		log.Printf("Initializing platform notifications job completion notifier")
		log.Printf("Kafka producer config - brokers: %v, topic: %s", cfg.Kafka.Brokers, cfg.Kafka.Topic)

		producer, err := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, messaging.ProducerOptions{
			ClientID:              cfg.Kafka.ClientID,
			Retries:               cfg.Kafka.Retries,
			Compression:           cfg.Kafka.CompressionType,
			RequiredAcks:          cfg.Kafka.RequiredAcks,
			Timeout:               cfg.Kafka.Timeout,
			SASLEnabled:           cfg.Kafka.SASL.Enabled,
			SASLMechanism:         cfg.Kafka.SASL.Mechanism,
			SASLUsername:          cfg.Kafka.SASL.Username,
			SASLPassword:          cfg.Kafka.SASL.Password,
			TLSEnabled:            cfg.Kafka.TLS.Enabled,
			TLSInsecureSkipVerify: cfg.Kafka.TLS.InsecureSkipVerify,
			TLSCAFile:             cfg.Kafka.TLS.CAFile,
			TLSCertFile:           cfg.Kafka.TLS.CertFile,
			TLSKeyFile:            cfg.Kafka.TLS.KeyFile,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		return executor.NewNotificationsBasedJobCompletionNotifier(producer), producer, nil
	case "null":
		log.Printf("Using null notifier (no notifications will be sent)")
		return executor.NewNullJobCompletionNotifier(), closerFunc(func() error { return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unsupported JOB_COMPLETION_NOTIFIER_IMPL type: %s", cfg.JobCompletionNotifierImpl)
	}
}

// newJobExecutor registers one executor per mode. The shared pool backs global_pool jobs.
func newJobExecutor(shared *worker.SharedPool, renderer *render.Renderer) *executor.DefaultJobExecutor {
	return executor.NewJobExecutor(map[domain.ExportMode]executor.JobExecutor{
		domain.ModeSync:       executor.NewInlineExecutor(renderer),
		domain.ModeParallel:   executor.NewPoolExecutor(renderer, worker.DefaultQueueCapacity),
		domain.ModeGlobalPool: executor.NewSharedPoolExecutor(shared),
	})
}
