package cloudmetrics

import (
	"context"
	"runtime"
	"time"

	"github.com/hintboard/hintboard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pushInterval = 30 * time.Minute

var Module = fx.Module("cloud.metrics",
	fx.Provide(NewPusher),
	fx.Provide(func(cfg config.Config, pusher Pusher, logger *zap.Logger) *CloudMetrics {
		if pusher == nil {
			return nil
		}
		return New(nil, pusher, cfg.AppVersion, logger)
	}),
	fx.Invoke(func(lc fx.Lifecycle, c *CloudMetrics, logger *zap.Logger, db *gorm.DB) {
		if c == nil {
			return
		}
		if logger == nil {
			logger = zap.NewNop()
		}

		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				logger.Info("starting cloud metrics background worker")
				go func() {
					ticker := time.NewTicker(pushInterval)
					defer ticker.Stop()

					refreshAndPush(ctx, c, db, logger)
					for {
						select {
						case <-ticker.C:
							refreshAndPush(ctx, c, db, logger)
						case <-ctx.Done():
							logger.Info("stopping cloud metrics background worker")
							return
						}
					}
				}()
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)

func refreshAndPush(ctx context.Context, c *CloudMetrics, db *gorm.DB, logger *zap.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.SetMemoryUsage(m.Sys)

	updateCount(ctx, db, "organizations", c.SetOrganizationsTotal)
	updateCount(ctx, db, "users", c.SetUsersTotal)
	updateCount(ctx, db, "ideas", c.SetIdeasTotal)

	if err := c.Push(ctx); err != nil {
		logger.Error("cloud metrics push failed", zap.Error(err))
	}
}

func updateCount(ctx context.Context, db *gorm.DB, table string, set func(int64)) {
	if db == nil {
		return
	}
	var count int64
	if err := db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return
	}
	set(count)
}
