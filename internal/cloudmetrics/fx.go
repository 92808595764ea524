package cloudmetrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPushInterval = 5 * time.Minute

var Module = fx.Module("cloud.metrics",
	fx.Provide(NewPusher),
	fx.Provide(func(cfg config.Config, pusher Pusher, logger *zap.Logger) *CloudMetrics {
		if !cfg.Cloud.Metrics.Enabled || pusher == nil {
			return nil
		}
		return New(nil, pusher, instanceID(cfg), cfg.AppVersion, logger)
	}),
	fx.Invoke(startWorker),
)

func startWorker(lc fx.Lifecycle, cfg config.Config, c *CloudMetrics, logger *zap.Logger, db *gorm.DB, clk clock.Clock) {
	if c == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := time.Duration(cfg.Cloud.Metrics.PushInterval) * time.Second
	if interval <= 0 {
		interval = defaultPushInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting cloud metrics background worker", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				c.collectAndPush(ctx, db, clk)
				for {
					select {
					case <-ticker.C:
						c.collectAndPush(ctx, db, clk)
					case <-ctx.Done():
						logger.Info("stopping cloud metrics background worker")
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func (c *CloudMetrics) collectAndPush(ctx context.Context, db *gorm.DB, clk clock.Clock) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.SetMemoryUsage(m.Sys)

	snapshot, err := loadFleet(ctx, db, clk.Now())
	if err != nil {
		c.log.Warn("cloud metrics fleet snapshot failed", zap.Error(err))
	} else {
		c.SetFleet(snapshot)
	}

	if err := c.Push(ctx); err != nil {
		c.log.Warn("cloud metrics push failed", zap.Error(err))
	}
}

func instanceID(cfg config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return cfg.AppName
	}
	return cfg.AppName + "@" + host
}
