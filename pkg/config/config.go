package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every runtime setting the binaries need.
type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Commission   CommissionConfig
	Fulfillment  FulfillmentConfig
	Checkout     CheckoutConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

// Load reads the environment into a Config and derives the database DSN.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags); err != nil {
		return nil, err
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRAFTMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"CRAFTMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRAFTMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRAFTMARKET_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow-list; empty keeps the built-in defaults.
	CORSOrigins []string `envconfig:"CRAFTMARKET_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CRAFTMARKET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CRAFTMARKET_DB_DSN"`
	Driver string `envconfig:"CRAFTMARKET_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CRAFTMARKET_DB_HOST"`
	Port     int    `envconfig:"CRAFTMARKET_DB_PORT" default:"5432"`
	User     string `envconfig:"CRAFTMARKET_DB_USER"`
	Password string `envconfig:"CRAFTMARKET_DB_PASSWORD"`
	Name     string `envconfig:"CRAFTMARKET_DB_NAME"`
	SSLMode  string `envconfig:"CRAFTMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRAFTMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRAFTMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRAFTMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRAFTMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL            string        `envconfig:"CRAFTMARKET_REDIS_URL" required:"true"`
	Address        string        `envconfig:"CRAFTMARKET_REDIS_ADDR"`
	Password       string        `envconfig:"CRAFTMARKET_REDIS_PASSWORD"`
	DB             int           `envconfig:"CRAFTMARKET_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"CRAFTMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"CRAFTMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"CRAFTMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"CRAFTMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"CRAFTMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"CRAFTMARKET_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CRAFTMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CRAFTMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CRAFTMARKET_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"CRAFTMARKET_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"CRAFTMARKET_SQLITE_PATH" default:"craftmarket.db"`
	AutoMigrate bool   `envconfig:"CRAFTMARKET_AUTO_MIGRATE" default:"false"`
}

// CommissionConfig holds platform fee percentages.
type CommissionConfig struct {
	PhysicalRatePercent       float64 `envconfig:"CRAFTMARKET_COMMISSION_PHYSICAL_RATE" default:"12"`
	DefaultDigitalRatePercent float64 `envconfig:"CRAFTMARKET_COMMISSION_DEFAULT_DIGITAL_RATE" default:"20"`
}

func (c CommissionConfig) validate() error {
	if c.PhysicalRatePercent < 0 || c.PhysicalRatePercent > 100 {
		return fmt.Errorf("%s must be between 0 and 100", EnvCommissionPhysicalRate)
	}
	if c.DefaultDigitalRatePercent < 0 || c.DefaultDigitalRatePercent > 100 {
		return fmt.Errorf("%s must be between 0 and 100", EnvCommissionDigitalRate)
	}
	return nil
}

type FulfillmentConfig struct {
	MinRejectionReasonLength int `envconfig:"CRAFTMARKET_FULFILLMENT_MIN_REJECTION_REASON" default:"10"`
}

type CheckoutConfig struct {
	RequireManualProof bool `envconfig:"CRAFTMARKET_CHECKOUT_REQUIRE_MANUAL_PROOF" default:"true"`
}

// RateLimitConfig bounds how many money-moving writes one actor may issue per window.
type RateLimitConfig struct {
	WriteLimit  int           `envconfig:"CRAFTMARKET_RATE_LIMIT_WRITES" default:"30"`
	WriteWindow time.Duration `envconfig:"CRAFTMARKET_RATE_LIMIT_WINDOW" default:"1m"`
}

type EventingConfig struct {
	CheckoutIdempotencyTTL time.Duration `envconfig:"CRAFTMARKET_EVENTING_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CRAFTMARKET_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CRAFTMARKET_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CRAFTMARKET_PUBSUB_DOMAIN_TOPIC" default:"craftmarket-domain-events"`
	DomainSubscription string `envconfig:"CRAFTMARKET_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CRAFTMARKET_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CRAFTMARKET_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CRAFTMARKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"CRAFTMARKET_CRON_INTERVAL" default:"1h"`
	NotificationRetentionDays int           `envconfig:"CRAFTMARKET_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
	OutboxRetentionDays       int           `envconfig:"CRAFTMARKET_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	PaymentReminderDays       int           `envconfig:"CRAFTMARKET_CRON_PAYMENT_REMINDER_DAYS" default:"2"`
}

func (db *DBConfig) ensureDSN(flags FeatureFlagsConfig) error {
	if db.DSN != "" {
		return nil
	}
	if flags.UseSQLite {
		db.Driver = "sqlite"
		db.DSN = flags.SQLitePath
		return nil
	}

	missing := []string{}
	discreteValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discreteValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
