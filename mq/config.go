package mq

import "time"

/* ========================================================================
 * MQ 配置
 * ======================================================================== */

// Config MQ 配置
type Config struct {
	// Type MQ 类型: none / kafka
	Type Type `yaml:"type"`

	// Kafka 配置
	Kafka *KafkaConfig `yaml:"kafka"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Type:  TypeNone,
		Kafka: DefaultKafkaConfig(),
	}
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Version string   `yaml:"version"` // Kafka 版本

	// SASL 认证
	SASL KafkaSASLConfig `yaml:"sasl"`

	// TLS 配置
	TLS KafkaTLSConfig `yaml:"tls"`

	Producer KafkaProducerConfig `yaml:"producer"`
}

// KafkaSASLConfig Kafka SASL 认证配置
type KafkaSASLConfig struct {
	Enable    bool   `yaml:"enable"`
	Mechanism string `yaml:"mechanism"` // PLAIN / SCRAM-SHA-256 / SCRAM-SHA-512
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// KafkaTLSConfig Kafka TLS 配置
type KafkaTLSConfig struct {
	Enable   bool   `yaml:"enable"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
	Insecure bool   `yaml:"insecure"` // 跳过证书验证
}

// KafkaProducerConfig Kafka 生产者配置
type KafkaProducerConfig struct {
	RequiredAcks    string        `yaml:"required_acks"` // none / leader / all
	Timeout         time.Duration `yaml:"timeout"`
	MaxMessageBytes int           `yaml:"max_message_bytes"`
	Compression     string        `yaml:"compression"` // none / gzip / snappy / lz4 / zstd
	Idempotent      bool          `yaml:"idempotent"`
	RetryMax        int           `yaml:"retry_max"`
}

// DefaultKafkaConfig 返回 Kafka 默认配置
func DefaultKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers: []string{"127.0.0.1:9092"},
		Version: "2.8.0",
		Producer: KafkaProducerConfig{
			RequiredAcks:    "all",
			Timeout:         10 * time.Second,
			MaxMessageBytes: 1024 * 1024,
			Compression:     "none",
			Idempotent:      false,
			RetryMax:        3,
		},
	}
}
