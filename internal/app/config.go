package app

import (
	"fmt"
	"time"

	server "github.com/abriesk/psychobotV1/internal/adapters/primary/http"
	alerterAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/kafka"
	"github.com/abriesk/psychobotV1/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/storage/redis"
	"github.com/abriesk/psychobotV1/internal/adapters/secondary/telegram"
	"github.com/abriesk/psychobotV1/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config             `envconfig:"POSTGRES"`
	Log      *logger.Config         `envconfig:"LOG"`
	Server   *server.Config         `envconfig:"APISERVER"`
	Telegram *telegram.Config       `envconfig:"TELEGRAM"`
	Redis    *redisAdapter.Config   `envconfig:"REDIS"`
	Kafka    *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter  *alerterAdapter.Config `envconfig:"ALERTER"`
	Bot      BotConfig              `envconfig:"BOT"`
	Jobs     JobsConfig             `envconfig:"JOBS"`
	Admin    AdminConfig            `envconfig:"ADMINAPI"`
}

// BotConfig параметры единственного бота записи
type BotConfig struct {
	ProviderID      int64   `envconfig:"PROVIDER_ID" required:"true"` // telegram id специалиста
	AdminIDs        []int64 `envconfig:"ADMIN_IDS"`                   // дополнительные админы
	DefaultLanguage string  `envconfig:"DEFAULT_LANGUAGE" default:"ru"`
	ClinicInfo      string  `envconfig:"CLINIC_INFO"` // адрес для очных консультаций
	WebhookSecret   string  `envconfig:"WEBHOOK_SECRET"`
}

func (c *BotConfig) Validate() error {
	if c.ProviderID == 0 {
		return fmt.Errorf("provider_id is required")
	}
	return nil
}

// JobsConfig интервалы фоновых джоб
type JobsConfig struct {
	ExpirerInterval time.Duration `envconfig:"EXPIRER_INTERVAL" default:"1h"`
	PumpInterval    time.Duration `envconfig:"PUMP_INTERVAL" default:"10s"`
}

// AdminConfig доступ к админскому HTTP API
type AdminConfig struct {
	Token string `envconfig:"TOKEN"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Bot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bot config: %w", err)
	}

	return cfg, nil
}
