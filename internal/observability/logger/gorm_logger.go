package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 250 * time.Millisecond

type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

// DefaultGormLoggerConfig logs only failed and slow statements outside debug.
func DefaultGormLoggerConfig(debug bool) GormLoggerConfig {
	cfg := GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        defaultSlowQuery,
		IgnoreRecordNotFound: true,
	}
	if debug {
		cfg.Level = gormlogger.Info
	}
	return cfg
}

// GormLogger writes gorm output through zap, carrying the request fields
// found on the statement context.
type GormLogger struct {
	base *zap.Logger
	cfg  GormLoggerConfig
}

var _ gormlogger.Interface = (*GormLogger)(nil)

func NewGormLogger(base *zap.Logger, cfg GormLoggerConfig) *GormLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &GormLogger{base: base.Named("gorm"), cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, threshold gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.cfg.Level < threshold {
		return
	}
	ce := WithContext(ctx, l.base).Check(level, msg)
	if ce == nil {
		return
	}
	if len(data) == 0 {
		ce.Write()
		return
	}
	ce.Write(zap.Any("data", data))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	level, ok := l.statementLevel(elapsed, err)
	if !ok {
		return
	}

	ce := WithContext(ctx, l.base).Check(level, "gorm.query")
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", operationFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if level == zapcore.ErrorLevel {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// statementLevel picks error for failures, warn for slow statements and
// debug for the rest, each gated by the configured gorm level.
func (l *GormLogger) statementLevel(elapsed time.Duration, err error) (zapcore.Level, bool) {
	lvl := l.cfg.Level
	if lvl <= gormlogger.Silent {
		return 0, false
	}
	if err != nil && !(l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
		return zapcore.ErrorLevel, lvl >= gormlogger.Error
	}
	if l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && lvl >= gormlogger.Warn {
		return zapcore.WarnLevel, true
	}
	return zapcore.DebugLevel, lvl >= gormlogger.Info
}

// ParamsFilter drops bound values so invoice totals stay out of logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

// operationFromSQL returns the first DML verb, skipping a leading CTE.
func operationFromSQL(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		switch verb := strings.Trim(token, "();"); verb {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return verb
		}
	}
	return "UNKNOWN"
}
