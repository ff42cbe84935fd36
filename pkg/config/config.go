package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"emart"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"5000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	MongoURI          string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName       string `envconfig:"MONGO_DB_NAME" default:"ecommerce"`
	MongoTransactions bool   `envconfig:"MONGO_TRANSACTIONS" default:"false"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	SMTP SMTPConfig

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	Notify NotifyConfig
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	User     string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"EMAIL_FROM"`
}

// Enabled reports whether enough is configured to dial a real server.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

type NotifyConfig struct {
	Workers     int           `envconfig:"NOTIFY_WORKERS" default:"2"`
	QueueSize   int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	MaxAttempts int           `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"3"`
	SendTimeout time.Duration `envconfig:"NOTIFY_SEND_TIMEOUT" default:"15s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
