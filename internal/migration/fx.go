package migration

import (
	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/config"
	ideadomain "github.com/hintboard/hintboard/internal/idea/domain"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
	"github.com/hintboard/hintboard/internal/seed"
	subscriptiondomain "github.com/hintboard/hintboard/internal/subscription/domain"
	topicdomain "github.com/hintboard/hintboard/internal/topic/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are development conveniences; the versioned SQL
			// targets postgres, so let gorm derive the schema there.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&organizationdomain.Organization{},
				&organizationdomain.Membership{},
				&subscriptiondomain.Subscription{},
				&topicdomain.Topic{},
				&ideadomain.Idea{},
				&ideadomain.Vote{},
				&announcementdomain.Announcement{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoBoard(conn)
		}
		return nil
	}),
)
