package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/aisgo/posibel/logger"
	"github.com/aisgo/posibel/mq"
	"github.com/aisgo/posibel/utils/id-generator/ulid"

	"go.uber.org/zap"
)

/* ========================================================================
 * Domain Events - 领域事件
 * ========================================================================
 * 职责: 事务提交后向 MQ 发布注册事件
 * 说明: 数据库是事实来源；发布失败记录日志，不影响业务结果
 * ======================================================================== */

const (
	EventOrganizationRegistered = "organization.registered"
	EventUserRegistered         = "user.registered"
)

// Event 事件信封
type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	OrganizationID int64     `json:"organizationId,string"`
	OccurredAt     time.Time `json:"occurredAt"`
	Data           any       `json:"data"`
}

// OrganizationRegistered organization.registered 负载
type OrganizationRegistered struct {
	OrganizationID int64  `json:"organizationId,string"`
	Name           string `json:"name"`
	AdminUserID    int64  `json:"adminUserId,string"`
	AdminRoleID    int64  `json:"adminRoleId,string"`
}

// UserRegistered user.registered 负载
type UserRegistered struct {
	UserID         int64  `json:"userId,string"`
	OrganizationID int64  `json:"organizationId,string"`
	RoleID         int64  `json:"roleId,string"`
	Email          string `json:"email"`
}

// Publisher 领域事件发布器；nil 表示不发布
type Publisher struct {
	producer    mq.Producer
	topicPrefix string
	log         *logger.Logger
}

// NewPublisher 创建事件发布器
// topic = topicPrefix + 事件类型，如 "posibel." + "user.registered"
func NewPublisher(producer mq.Producer, topicPrefix string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{producer: producer, topicPrefix: topicPrefix, log: log}
}

// Publish 同步发布事件，失败只记录日志
func (p *Publisher) Publish(ctx context.Context, eventType string, organizationID int64, data any) {
	if p == nil || p.producer == nil {
		return
	}

	evt := Event{
		ID:             ulid.GenerateString(),
		Type:           eventType,
		OrganizationID: organizationID,
		OccurredAt:     time.Now().UTC(),
		Data:           data,
	}
	body, err := json.Marshal(evt)
	if err != nil {
		p.log.WithContext(ctx).Error("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	msg := mq.NewMessage(p.topicPrefix+eventType, body).
		WithKey(strconv.FormatInt(organizationID, 10)).
		WithHeader("event_id", evt.ID).
		WithHeader("event_type", eventType)

	if _, err := p.producer.Send(ctx, msg); err != nil {
		p.log.WithContext(ctx).Warn("publish event failed",
			zap.String("type", eventType),
			zap.String("event_id", evt.ID),
			zap.Error(err),
		)
	}
}
