package mq

import (
	"context"

	"github.com/aisgo/posibel/logger"

	"go.uber.org/fx"
)

/* ========================================================================
 * Fx 模块
 * ======================================================================== */

// Module 提供 Producer，停止时关闭
var Module = fx.Module("mq",
	fx.Provide(ProvideProducer),
)

// ProducerParams Producer 依赖参数
type ProducerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *Config
	Logger *logger.Logger
}

// ProvideProducer 打开 Producer 并在停止时关闭
func ProvideProducer(p ProducerParams) (Producer, error) {
	producer, err := Open(p.Config, p.Logger.Logger)
	if err != nil {
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})
	return producer, nil
}
