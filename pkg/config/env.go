package config

const EnvPrefix = "CREATORHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:creatorhub.db?cache=shared&_busy_timeout=5000"
)

const (
	EnvAppEnv      = "CREATORHUB_APP_ENV"
	EnvPort        = "CREATORHUB_APP_PORT"
	EnvLogLevel    = "CREATORHUB_LOG_LEVEL"
	EnvDBDSN       = "CREATORHUB_DB_DSN"
	EnvDBDriver    = "CREATORHUB_DB_DRIVER"
	EnvDBHost      = "CREATORHUB_DB_HOST"
	EnvDBUser      = "CREATORHUB_DB_USER"
	EnvDBName      = "CREATORHUB_DB_NAME"
	EnvRedisURL    = "CREATORHUB_REDIS_URL"
	EnvJWTSecret   = "CREATORHUB_JWT_SECRET"
	EnvJWTIssuer   = "CREATORHUB_JWT_ISSUER"
	EnvJWTExpMins  = "CREATORHUB_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite   = "CREATORHUB_USE_SQLITE"
	EnvAutoMigrate = "CREATORHUB_AUTO_MIGRATE"

	EnvCheckoutMaxLines       = "CREATORHUB_CHECKOUT_MAX_LINES"
	EnvCheckoutSerializableTx = "CREATORHUB_CHECKOUT_SERIALIZABLE_TX"

	EnvGCPProjectID      = "CREATORHUB_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "CREATORHUB_PUBSUB_ORDERS_TOPIC"
	EnvOutboxBatchSize   = "CREATORHUB_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPollMS      = "CREATORHUB_OUTBOX_PUBLISH_POLL_MS"
	EnvOutboxMaxAttempts = "CREATORHUB_OUTBOX_MAX_ATTEMPTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
