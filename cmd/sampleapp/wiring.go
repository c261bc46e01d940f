package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/app/routes"
	"github.com/shashiranjanraj/sampleapp/config"
	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/cache"
	"github.com/shashiranjanraj/sampleapp/pkg/database"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

const tokenTTL = 24 * time.Hour

// setupLogger installs the process logger. When LOG_MONGO_URI is set, records
// are also shipped to MongoDB; the returned func flushes them.
func setupLogger(ctx context.Context) (*slog.Logger, func()) {
	env := config.AppEnv()
	base := logger.NewHandler(env, os.Stdout)

	uri := config.LogMongoURI()
	if uri == "" {
		log := slog.New(base)
		logger.SetDefault(log)
		return log, func() {}
	}

	mh, err := logger.NewMongoHandler(ctx, uri, config.LogMongoDB(), config.LogMongoCollection())
	if err != nil {
		log := slog.New(base)
		logger.SetDefault(log)
		log.Warn("mongo log shipping disabled", "error", err)
		return log, func() {}
	}
	log := slog.New(logger.NewMultiHandler(base, mh))
	logger.SetDefault(log)
	return log, mh.Close
}

func cacheOptions() cache.Options {
	return cache.Options{
		Driver:   config.CacheDriver(),
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	}
}

func newBootstrapper(log *slog.Logger) *app.Bootstrapper {
	signer := auth.NewSigner(config.JWTSecret(), tokenTTL)
	return app.New(app.Config{
		Port:      config.AppPort(),
		Env:       config.AppEnv(),
		BodyLimit: config.BodyLimit(),
	}, log).
		Persistence(
			database.Connector{Driver: config.DatabaseDriver(), DSN: config.DatabaseDSN()},
			repositories.Builder(cacheOptions()),
		).
		Routes(routes.API(signer, config.TrustedProxies()...))
}

// openRepositories connects and migrates outside of bring-up.
func openRepositories(ctx context.Context) (*repositories.Set, error) {
	db, err := database.Open(ctx, config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	return repositories.Build(ctx, db, cache.Nop{})
}
