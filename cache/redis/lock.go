package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aisgo/posibel/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

/* ========================================================================
 * 分布式锁 - 基于 Redis SET NX + Lua 释放
 * ========================================================================
 * 职责: 串行化跨实例的 check-then-insert（注册邮箱）
 * 说明: 锁只缩小竞争窗口，唯一索引仍是最终约束
 * ======================================================================== */

var (
	ErrLockFailed   = errors.New("failed to acquire lock")
	ErrUnlockFailed = errors.New("failed to release lock")
)

// 仅持有者可删除
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Lock 分布式锁
type Lock struct {
	client *Client
	key    string
	value  string // 唯一标识，防止误删
	opt    LockOption
}

// LockOption 锁选项
type LockOption struct {
	TTL        time.Duration // 锁过期时间
	RetryTimes int           // 尝试次数
	RetryDelay time.Duration // 重试间隔
}

// DefaultLockOption 默认锁选项
func DefaultLockOption() LockOption {
	return LockOption{
		TTL:        10 * time.Second,
		RetryTimes: 20,
		RetryDelay: 50 * time.Millisecond,
	}
}

// NewLock 创建分布式锁
func (c *Client) NewLock(key string, opts ...LockOption) *Lock {
	opt := DefaultLockOption()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.RetryTimes <= 0 {
		opt.RetryTimes = 1
	}

	return &Lock{
		client: c,
		key:    "lock:" + key,
		value:  uuid.New().String(),
		opt:    opt,
	}
}

// Acquire 获取锁，重试耗尽返回 ErrLockFailed
func (l *Lock) Acquire(ctx context.Context) error {
	for i := 0; i < l.opt.RetryTimes; i++ {
		ok, err := l.client.SetNX(ctx, l.key, l.value, l.opt.TTL)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i == l.opt.RetryTimes-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.opt.RetryDelay):
		}
	}
	return ErrLockFailed
}

// Release 释放锁
func (l *Lock) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, l.client.rdb, []string{l.key}, l.value).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrUnlockFailed
	}
	return nil
}

/* ========================================================================
 * Locker - 按作用域加锁
 * ======================================================================== */

// Locker 以 scope:key 为锁名的锁工厂
type Locker struct {
	client *Client
	opt    LockOption
}

// NewLocker 创建 Locker，client 为 nil 时返回 nil
func NewLocker(client *Client, opts ...LockOption) *Locker {
	if client == nil {
		return nil
	}
	opt := DefaultLockOption()
	if len(opts) > 0 {
		opt = opts[0]
	}
	return &Locker{client: client, opt: opt}
}

// Hold 获取 scope:key 锁，返回释放函数
func (l *Locker) Hold(ctx context.Context, scope, key string) (func(context.Context) error, error) {
	lock := l.client.NewLock(scope+":"+key, l.opt)
	err := lock.Acquire(ctx)
	metrics.LockAcquireTotal.WithLabelValues(scope, strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		l.client.log.Warn("lock not acquired", zap.String("scope", scope), zap.Error(err))
		return nil, err
	}
	return lock.Release, nil
}
