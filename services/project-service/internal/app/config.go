package app

import (
	"fmt"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/config"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/outbox"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"project-service"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	KafkaBrokers           string `env:"KAFKA_BROKERS"`
	ProjectTopic           string `env:"KAFKA_PROJECT_TOPIC" envDefault:"project"`
	ProjectTopicPartitions int    `env:"KAFKA_PROJECT_TOPIC_PARTITIONS" envDefault:"6"`
	RestoreGroupID         string `env:"KAFKA_RESTORE_GROUP_ID" envDefault:"project-service-restore"`
	RestoreEnabled         bool   `env:"RESTORE_ENABLED" envDefault:"false"`

	RedisAddr            string `env:"REDIS_ADDR"`
	OperationsBlocked    bool   `env:"OPERATIONS_BLOCKED" envDefault:"false"`
	OperationsBlockedKey string `env:"OPERATIONS_BLOCKED_KEY" envDefault:"project-service:operations-blocked"`

	Outbox outbox.Limits
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := config.Port("PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.ProjectTopicPartitions <= 0 {
		return Config{}, fmt.Errorf("KAFKA_PROJECT_TOPIC_PARTITIONS must be positive (got %d)", cfg.ProjectTopicPartitions)
	}
	if cfg.RestoreEnabled && cfg.KafkaBrokers == "" {
		return Config{}, fmt.Errorf("RESTORE_ENABLED requires KAFKA_BROKERS")
	}
	if cfg.Outbox.MaxValueSize() <= 0 {
		return Config{}, fmt.Errorf("outbox limits leave no room for values: %+v", cfg.Outbox)
	}
	return cfg, nil
}
