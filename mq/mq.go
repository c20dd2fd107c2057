package mq

import (
	"context"
	"fmt"
	"sort"
)

/* ========================================================================
 * MQ - 领域事件投递
 * ========================================================================
 * 职责: 与中间件无关的同步生产者抽象
 * 用途: organization.registered / user.registered 等事件
 * 说明: 数据库是事实来源，消息只用于通知下游，投递失败不回滚业务
 * ======================================================================== */

// Type 中间件类型
type Type string

const (
	TypeNone  Type = "none" // 只记录日志
	TypeKafka Type = "kafka"
)

// Producer 同步投递，Send 返回即表示 broker 已确认
type Producer interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
	Close() error
}

// Message Key 决定分区，Headers 对应 Kafka record header
type Message struct {
	Topic   string
	Key     string
	Body    []byte
	Headers map[string]string
}

func NewMessage(topic string, body []byte) *Message {
	return &Message{Topic: topic, Body: body}
}

func (m *Message) WithKey(key string) *Message {
	m.Key = key
	return m
}

func (m *Message) WithHeader(name, value string) *Message {
	if m.Headers == nil {
		m.Headers = make(map[string]string, 2)
	}
	m.Headers[name] = value
	return m
}

// HeaderNames 按字典序返回 header 名，保证编码顺序稳定
func (m *Message) HeaderNames() []string {
	names := make([]string, 0, len(m.Headers))
	for name := range m.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Receipt broker 确认信息
type Receipt struct {
	Topic     string
	Partition int32
	Offset    int64
}

// ID topic-partition-offset
func (r *Receipt) ID() string {
	return fmt.Sprintf("%s-%d-%d", r.Topic, r.Partition, r.Offset)
}
