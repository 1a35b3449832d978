package config

import (
	"path"

	"github.com/karwaan/tripsync/internal/modules/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RedisAddrEnv   = "REDIS_ADDR"
	RootPathEnv    = "ROOT_PATH"
)

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	RedisAddr      string
	MigrationsPath string
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)
	redisAddr := env.MustGetString(RedisAddrEnv)

	rootPath := env.MustGetString(RootPathEnv)
	migrationsPath := path.Join(rootPath, "db", "migrations")

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		RedisAddr:      redisAddr,
		MigrationsPath: migrationsPath,
	}, nil
}
