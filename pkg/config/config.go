package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Replenishment ReplenishmentConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Replenishment.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTLIST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SMARTLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTLIST_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"SMARTLIST_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type DBConfig struct {
	DSN        string `envconfig:"SMARTLIST_DB_DSN"`
	SQLitePath string `envconfig:"SMARTLIST_SQLITE_PATH" default:"smartlist.db"`

	Host     string `envconfig:"SMARTLIST_DB_HOST"`
	Port     int    `envconfig:"SMARTLIST_DB_PORT" default:"5432"`
	User     string `envconfig:"SMARTLIST_DB_USER"`
	Password string `envconfig:"SMARTLIST_DB_PASSWORD"`
	Name     string `envconfig:"SMARTLIST_DB_NAME"`
	SSLMode  string `envconfig:"SMARTLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SMARTLIST_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTLIST_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SMARTLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTLIST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTLIST_JWT_ISSUER" default:"smartlist"`
	ExpirationMinutes int    `envconfig:"SMARTLIST_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SMARTLIST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SMARTLIST_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"SMARTLIST_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"SMARTLIST_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	InventoryTopic string `envconfig:"SMARTLIST_PUBSUB_INVENTORY_TOPIC" default:"smartlist-inventory-events"`
	ShoppingTopic  string `envconfig:"SMARTLIST_PUBSUB_SHOPPING_TOPIC" default:"smartlist-shopping-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"SMARTLIST_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"SMARTLIST_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"SMARTLIST_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"SMARTLIST_OUTBOX_RETENTION" default:"720h"`
}

// ReplenishmentConfig holds the knobs of the inventory engine.
type ReplenishmentConfig struct {
	DefaultCriticalDays int           `envconfig:"SMARTLIST_DEFAULT_CRITICAL_DAYS" default:"3"`
	ListRetentionDays   int           `envconfig:"SMARTLIST_LIST_RETENTION_DAYS" default:"180"`
	IdempotencyTTL      time.Duration `envconfig:"SMARTLIST_IDEMPOTENCY_TTL" default:"24h"`
	CronInterval        time.Duration `envconfig:"SMARTLIST_CRON_INTERVAL" default:"1h"`
}

func (r ReplenishmentConfig) validate() error {
	if r.DefaultCriticalDays < 0 {
		return fmt.Errorf("%s must be >= 0", EnvDefaultCriticalDays)
	}
	if r.ListRetentionDays <= 0 {
		return fmt.Errorf("%s must be > 0", EnvListRetentionDays)
	}
	return nil
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	var missing []string
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if parts[env] == "" {
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
