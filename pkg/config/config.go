package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Checkout.MaxLines <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvCheckoutMaxLines)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CREATORHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"CREATORHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CREATORHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CREATORHUB_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CREATORHUB_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CREATORHUB_DB_DSN"`
	Driver string `envconfig:"CREATORHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CREATORHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"CREATORHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CREATORHUB_DB_USER"`
	LegacyPassword string `envconfig:"CREATORHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"CREATORHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"CREATORHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CREATORHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CREATORHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CREATORHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CREATORHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CREATORHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CREATORHUB_REDIS_ADDR"`
	Password     string        `envconfig:"CREATORHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"CREATORHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CREATORHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CREATORHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CREATORHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CREATORHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CREATORHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CREATORHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CREATORHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CREATORHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CREATORHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CREATORHUB_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig bounds checkout requests and selects the transaction isolation.
type CheckoutConfig struct {
	MaxLines       int  `envconfig:"CREATORHUB_CHECKOUT_MAX_LINES" default:"100"`
	SerializableTx bool `envconfig:"CREATORHUB_CHECKOUT_SERIALIZABLE_TX" default:"true"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"CREATORHUB_EVENTING_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CREATORHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CREATORHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CREATORHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"CREATORHUB_PUBSUB_ORDERS_TOPIC" default:"creatorhub-orders"`
	OrdersSubscription string `envconfig:"CREATORHUB_PUBSUB_ORDERS_SUBSCRIPTION" default:"creatorhub-orders-sub"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CREATORHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CREATORHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CREATORHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval converts the configured poll milliseconds.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"CREATORHUB_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"CREATORHUB_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
