package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

/* ========================================================================
 * ZapGormLogger - GORM 日志桥接
 * ========================================================================
 * 职责: 将 GORM 的 SQL 日志输出到 zap
 * 规则: 忽略 ErrRecordNotFound；超过阈值的 SQL 记为慢查询
 * ======================================================================== */

const defaultSlowThreshold = 200 * time.Millisecond

// ZapGormLogger 实现 gormlogger.Interface
type ZapGormLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// GormLoggerOption 配置项
type GormLoggerOption func(*ZapGormLogger)

// WithSlowThreshold 设置慢查询阈值
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *ZapGormLogger) {
		if d > 0 {
			l.slowThreshold = d
		}
	}
}

// WithLogLevel 设置 GORM 日志级别
func WithLogLevel(level gormlogger.LogLevel) GormLoggerOption {
	return func(l *ZapGormLogger) {
		l.level = level
	}
}

// NewZapGormLogger 创建 GORM 日志桥接
func NewZapGormLogger(log *zap.Logger, opts ...GormLoggerOption) *ZapGormLogger {
	l := &ZapGormLogger{
		log:           log.WithOptions(zap.AddCallerSkip(3)),
		level:         gormlogger.Warn,
		slowThreshold: defaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode 实现 gormlogger.Interface
func (l *ZapGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info 实现 gormlogger.Interface
func (l *ZapGormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

// Warn 实现 gormlogger.Interface
func (l *ZapGormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

// Error 实现 gormlogger.Interface
func (l *ZapGormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace 实现 gormlogger.Interface
func (l *ZapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("gorm query failed",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("gorm slow query",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", l.slowThreshold),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("gorm query",
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	}
}
