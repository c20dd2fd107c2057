package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Driver 由实现包在 init 中注册，mq 包不反向依赖实现
// 使用: import _ "github.com/aisgo/posibel/mq/kafka"
type Driver func(cfg *Config, log *zap.Logger) (Producer, error)

var drivers sync.Map // Type -> Driver

func Register(typ Type, d Driver) {
	drivers.Store(typ, d)
}

// Open 按 cfg.Type 创建生产者；空或 none 返回 LogProducer
func Open(cfg *Config, log *zap.Logger) (Producer, error) {
	if cfg == nil {
		return nil, errors.New("mq: nil config")
	}
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Type == "" || cfg.Type == TypeNone {
		log.Info("mq disabled, events are logged only")
		return NewLogProducer(log), nil
	}
	d, ok := drivers.Load(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("mq: no driver registered for %q", cfg.Type)
	}
	log.Info("opening mq producer", zap.String("type", string(cfg.Type)))
	return d.(Driver)(cfg, log)
}

// LogProducer 丢弃消息，仅输出 debug 日志
type LogProducer struct {
	log *zap.Logger
}

func NewLogProducer(log *zap.Logger) *LogProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogProducer{log: log}
}

func (p *LogProducer) Send(_ context.Context, msg *Message) (*Receipt, error) {
	p.log.Debug("event not delivered",
		zap.String("topic", msg.Topic),
		zap.String("key", msg.Key),
		zap.Int("bytes", len(msg.Body)),
	)
	return &Receipt{Topic: msg.Topic, Partition: -1, Offset: -1}, nil
}

func (p *LogProducer) Close() error { return nil }
