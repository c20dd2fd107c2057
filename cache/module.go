package cache

import (
	"github.com/aisgo/posibel/cache/redis"

	"go.uber.org/fx"
)

// Module 提供 *redis.Client 与 *redis.Locker
// redis.enabled=false 时两者都是 nil，依赖方需判空
var Module = fx.Module("cache",
	fx.Provide(
		redis.NewClient,
		func(c *redis.Client) *redis.Locker { return redis.NewLocker(c) },
	),
)
