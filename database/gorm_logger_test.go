package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestZapGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapGormLogger(zap.New(core), WithSlowThreshold(10*time.Millisecond))
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found must not be logged")
	}

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	if logs.FilterMessage("gorm query failed").Len() != 1 {
		t.Fatalf("expected failed query entry")
	}

	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	if logs.FilterMessage("gorm slow query").Len() != 1 {
		t.Fatalf("expected slow query entry")
	}

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	if logs.FilterMessage("gorm query failed").Len() != 1 {
		t.Fatalf("silent mode must not log")
	}
}
