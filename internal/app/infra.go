package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
	"github.com/mediqhq/mediq_backend/pkg/database"
	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
	"github.com/mediqhq/mediq_backend/pkg/paystack"
	redispkg "github.com/mediqhq/mediq_backend/pkg/redis"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvidePasetoManager),
	fx.Provide(ProvidePaystackClient),
	fx.Provide(ProvideStorage),
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing database connection")
			return database.Close(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization() (authorize.IAuthorization, error) {
	return authorize.New()
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvidePaystackClient(cfg *config.Config) *paystack.Client {
	return paystack.New(cfg.Paystack)
}

func ProvideStorage(cfg *config.Config) (*storage.Store, error) {
	return storage.New(cfg.Storage)
}
