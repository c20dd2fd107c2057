package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/IBM/sarama"

	"github.com/aisgo/posibel/mq"
)

var acks = map[string]sarama.RequiredAcks{
	"none":   sarama.NoResponse,
	"leader": sarama.WaitForLocal,
	"all":    sarama.WaitForAll,
}

var codecs = map[string]sarama.CompressionCodec{
	"none":   sarama.CompressionNone,
	"gzip":   sarama.CompressionGZIP,
	"snappy": sarama.CompressionSnappy,
	"lz4":    sarama.CompressionLZ4,
	"zstd":   sarama.CompressionZSTD,
}

// saramaConfig 空值沿用 sarama 默认；未知的 acks / compression 直接报错
func saramaConfig(cfg *mq.KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	pc := cfg.Producer

	if cfg.Version != "" {
		v, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("kafka: version %q: %w", cfg.Version, err)
		}
		sc.Version = v
	}

	// SyncProducer 必须开启
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Retry.Max = pc.RetryMax
	if pc.Timeout > 0 {
		sc.Producer.Timeout = pc.Timeout
	}
	if pc.MaxMessageBytes > 0 {
		sc.Producer.MaxMessageBytes = pc.MaxMessageBytes
	}

	if pc.RequiredAcks != "" {
		a, ok := acks[pc.RequiredAcks]
		if !ok {
			return nil, fmt.Errorf("kafka: unknown required_acks %q", pc.RequiredAcks)
		}
		sc.Producer.RequiredAcks = a
	}
	if pc.Compression != "" {
		c, ok := codecs[pc.Compression]
		if !ok {
			return nil, fmt.Errorf("kafka: unknown compression %q", pc.Compression)
		}
		sc.Producer.Compression = c
	}

	if pc.Idempotent {
		sc.Producer.Idempotent = true
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Net.MaxOpenRequests = 1
	}

	if cfg.SASL.Enable {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User = cfg.SASL.Username
		sc.Net.SASL.Password = cfg.SASL.Password
		sc.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if gen := scramGenerator(cfg.SASL.Mechanism); gen != nil {
			sc.Net.SASL.Mechanism = sarama.SASLMechanism(cfg.SASL.Mechanism)
			sc.Net.SASL.SCRAMClientGeneratorFunc = gen
		}
	}

	if cfg.TLS.Enable {
		tc, err := tlsConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = tc
	}

	return sc, nil
}

func tlsConfig(cfg mq.KafkaTLSConfig) (*tls.Config, error) {
	tc := &tls.Config{InsecureSkipVerify: cfg.Insecure}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("kafka: read ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("kafka: no certificate in %s", cfg.CAFile)
		}
		tc.RootCAs = pool
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("kafka: load key pair: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}
