package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/aisgo/posibel/mq"
)

/* ========================================================================
 * Kafka Producer
 * ========================================================================
 * 职责: 基于 sarama.SyncProducer 实现 mq.Producer
 * 注册: init 中注册 mq.TypeKafka 驱动
 * ======================================================================== */

func init() {
	mq.Register(mq.TypeKafka, Open)
}

var errClosed = errors.New("kafka: producer closed")

// Producer Close 之后的 Send 返回错误
type Producer struct {
	sync   sarama.SyncProducer
	log    *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Open 按配置连接 broker
func Open(cfg *mq.Config, log *zap.Logger) (mq.Producer, error) {
	if cfg.Kafka == nil {
		return nil, errors.New("kafka: missing kafka section")
	}
	sc, err := saramaConfig(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	sp, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka: connect %v: %w", cfg.Kafka.Brokers, err)
	}

	p := Wrap(sp, log)
	p.log.Info("kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers))
	return p, nil
}

// Wrap 包装已有的 SyncProducer，测试中传入 sarama/mocks
func Wrap(sp sarama.SyncProducer, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{sync: sp, log: log}
}

func (p *Producer) Send(ctx context.Context, msg *mq.Message) (*mq.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, errClosed
	}

	partition, offset, err := p.sync.SendMessage(record(msg))
	if err != nil {
		p.log.Error("kafka send", zap.String("topic", msg.Topic), zap.Error(err))
		return nil, err
	}

	r := &mq.Receipt{Topic: msg.Topic, Partition: partition, Offset: offset}
	p.log.Debug("kafka sent", zap.String("id", r.ID()))
	return r, nil
}

// Close 可重复调用
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sync.Close()
}

func record(msg *mq.Message) *sarama.ProducerMessage {
	rec := &sarama.ProducerMessage{
		Topic:     msg.Topic,
		Value:     sarama.ByteEncoder(msg.Body),
		Timestamp: time.Now(),
	}
	if msg.Key != "" {
		rec.Key = sarama.StringEncoder(msg.Key)
	}
	for _, name := range msg.HeaderNames() {
		rec.Headers = append(rec.Headers, sarama.RecordHeader{
			Key:   []byte(name),
			Value: []byte(msg.Headers[name]),
		})
	}
	return rec
}
