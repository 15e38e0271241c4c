package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"dealradar/internal/domain"
	"dealradar/pkg/errcodes"
)

type Config struct {
	HTTP      HTTP
	Redis     Redis
	Postgres  Postgres
	Storage   Storage
	Quota     Quota
	Discovery Discovery
	Scanner   Scanner
	Estimator Estimator
	Notifier  Notifier
	Bot       Bot
}

type Bot struct {
	Enabled bool   `env:"BOT_ENABLED" envDefault:"false"`
	Token   string `env:"BOT_TOKEN"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, domain.WrapError(err, errcodes.FatalConfiguration, "env.Parse")
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// validate ловит комбинации, которые env-теги выразить не могут.
func (c Config) validate() error {
	// Очередь задач живёт в том же Redis, что и хранилище: расписание с
	// файловым или postgres бэкендом молча ушло бы в localhost.
	if c.Discovery.ScheduleEnabled && c.Storage.Backend != StorageRedis {
		return domain.NewError(errcodes.FatalConfiguration,
			"DISCOVERY_SCHEDULE_ENABLED requires STORAGE_BACKEND=redis")
	}

	return nil
}
