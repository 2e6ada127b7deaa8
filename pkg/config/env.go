package config

// EnvPrefix is handed to envconfig; every key below also works unprefixed.
const EnvPrefix = "CRAFTMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CRAFTMARKET_APP_ENV"
	EnvPort     = "CRAFTMARKET_APP_PORT"
	EnvLogLevel = "CRAFTMARKET_LOG_LEVEL"

	EnvDBDSN  = "CRAFTMARKET_DB_DSN"
	EnvDBHost = "CRAFTMARKET_DB_HOST"
	EnvDBUser = "CRAFTMARKET_DB_USER"
	EnvDBName = "CRAFTMARKET_DB_NAME"

	EnvRedisURL  = "CRAFTMARKET_REDIS_URL"
	EnvJWTSecret = "CRAFTMARKET_JWT_SECRET"
	EnvJWTIssuer = "CRAFTMARKET_JWT_ISSUER"

	EnvUseSQLite  = "CRAFTMARKET_USE_SQLITE"
	EnvSQLitePath = "CRAFTMARKET_SQLITE_PATH"

	EnvCommissionPhysicalRate = "CRAFTMARKET_COMMISSION_PHYSICAL_RATE"
	EnvCommissionDigitalRate  = "CRAFTMARKET_COMMISSION_DEFAULT_DIGITAL_RATE"

	EnvFulfillmentMinReason = "CRAFTMARKET_FULFILLMENT_MIN_REJECTION_REASON"
	EnvPubSubDomainTopic    = "CRAFTMARKET_PUBSUB_DOMAIN_TOPIC"
	EnvCronInterval         = "CRAFTMARKET_CRON_INTERVAL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
