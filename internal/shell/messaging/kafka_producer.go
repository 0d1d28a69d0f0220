package messaging

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/IBM/sarama"
)

// ProducerOptions tunes the underlying sarama producer.
type ProducerOptions struct {
	ClientID     string
	Retries      int
	Compression  string
	RequiredAcks int
	Timeout      time.Duration

	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string

	TLSEnabled            bool
	TLSInsecureSkipVerify bool
	TLSCAFile             string
	TLSCertFile           string
	TLSKeyFile            string
}

// KafkaProducer publishes messages to a single topic
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer connects a synchronous producer to brokers
func NewKafkaProducer(brokers []string, topic string, opts ProducerOptions) (*KafkaProducer, error) {
	log.Printf("[DEBUG] KafkaProducer - initializing with brokers: %v, topic: %s", brokers, topic)

	config, err := newSaramaConfig(opts)
	if err != nil {
		return nil, err
	}

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to create producer: %v", err)
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - producer created successfully")
	return NewKafkaProducerFromSync(producer, topic), nil
}

// NewKafkaProducerFromSync wraps an existing sarama producer
func NewKafkaProducerFromSync(producer sarama.SyncProducer, topic string) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
	}
}

func newSaramaConfig(opts ProducerOptions) (*sarama.Config, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.RequiredAcks(opts.RequiredAcks)
	if opts.RequiredAcks == 0 {
		config.Producer.RequiredAcks = sarama.WaitForAll
	}
	config.Producer.Retry.Max = 5
	if opts.Retries > 0 {
		config.Producer.Retry.Max = opts.Retries
	}
	config.Producer.Return.Successes = true
	config.Producer.Compression = compressionCodec(opts.Compression)
	if opts.ClientID != "" {
		config.ClientID = opts.ClientID
	}
	if opts.Timeout > 0 {
		config.Producer.Timeout = opts.Timeout
	}
	if opts.SASLEnabled {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLMechanism(opts.SASLMechanism)
		config.Net.SASL.User = opts.SASLUsername
		config.Net.SASL.Password = opts.SASLPassword
	}
	if opts.TLSEnabled {
		tlsConfig, err := newTLSConfig(opts)
		if err != nil {
			return nil, err
		}
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = tlsConfig
	}
	return config, nil
}

// newTLSConfig trusts TLSCAFile in addition to the system roots and presents
// the client certificate when both cert and key files are set.
func newTLSConfig(opts ProducerOptions) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: opts.TLSInsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if opts.TLSCAFile != "" {
		caCert, err := os.ReadFile(opts.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read Kafka CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in Kafka CA file %s", opts.TLSCAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if opts.TLSCertFile != "" || opts.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load Kafka client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func compressionCodec(name string) sarama.CompressionCodec {
	switch name {
	case "none":
		return sarama.CompressionNone
	case "gzip":
		return sarama.CompressionGZIP
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	default:
		return sarama.CompressionSnappy
	}
}

// SendMessage sends a message to Kafka with the specified key, value, and headers
func (k *KafkaProducer) SendMessage(key string, value []byte, headers map[string]string) error {
	log.Printf("[DEBUG] KafkaProducer - sending message with key: %s", key)

	kafkaHeaders := make([]sarama.RecordHeader, 0, len(headers))
	for name, v := range headers {
		kafkaHeaders = append(kafkaHeaders, sarama.RecordHeader{
			Key:   []byte(name),
			Value: []byte(v),
		})
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Headers:   kafkaHeaders,
		Timestamp: time.Now(),
	}

	partition, offset, err := k.producer.SendMessage(kafkaMessage)
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to send message: %v", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - message sent successfully to partition %d at offset %d", partition, offset)
	return nil
}

// SendNotificationMessage publishes a platform notification keyed by org_id
func (k *KafkaProducer) SendNotificationMessage(message *NotificationMessage) error {
	payload, err := message.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	headers := map[string]string{
		"rh-message-type": message.EventType,
		"rh-org-id":       message.OrgID,
		"version":         message.Version,
	}

	return k.SendMessage(message.OrgID, payload, headers)
}

// Close closes the Kafka producer
func (k *KafkaProducer) Close() error {
	log.Printf("[DEBUG] KafkaProducer - closing producer")
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
