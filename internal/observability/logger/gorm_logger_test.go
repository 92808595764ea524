package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(cfg GormLoggerConfig) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), cfg), logs
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from invoices"))
	assert.Equal(t, "SELECT", operationFromSQL("WITH scoped AS (SELECT 1) SELECT * FROM scoped"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerLogsFailedQueries(t *testing.T) {
	l, logs := newObservedGormLogger(GormLoggerConfig{Level: gormlogger.Warn})

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM invoices", 0
	}, errors.New("connection reset"))

	entries := logs.FilterMessage("gorm.query").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "SELECT", entries[0].ContextMap()["operation"])
	}
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	l, logs := newObservedGormLogger(DefaultGormLoggerConfig(false))

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM stores", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 0, logs.Len())
}

func TestGormLoggerSilentMode(t *testing.T) {
	l, logs := newObservedGormLogger(DefaultGormLoggerConfig(true))
	silent := l.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))

	assert.Equal(t, 0, logs.Len())
}
