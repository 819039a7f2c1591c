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
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Stocking     StockingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETPARTS_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETPARTS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLEETPARTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETPARTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETPARTS_DB_DSN"`
	Driver string `envconfig:"FLEETPARTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETPARTS_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETPARTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETPARTS_DB_USER"`
	LegacyPassword string `envconfig:"FLEETPARTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETPARTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETPARTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETPARTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETPARTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETPARTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETPARTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETPARTS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLEETPARTS_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETPARTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETPARTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETPARTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETPARTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETPARTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETPARTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETPARTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret              string `envconfig:"FLEETPARTS_JWT_SECRET" required:"true"`
	Issuer              string `envconfig:"FLEETPARTS_JWT_ISSUER" required:"true"`
	ExpirationMinutes   int    `envconfig:"FLEETPARTS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLDays int    `envconfig:"FLEETPARTS_JWT_REFRESH_TTL_DAYS" default:"7"`
}

// RefreshTokenTTL converts the configured day count into a duration.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	UseSQLite    bool `envconfig:"FLEETPARTS_USE_SQLITE" default:"false"`
	AutoMigrate  bool `envconfig:"FLEETPARTS_AUTO_MIGRATE" default:"false"`
	SessionCheck bool `envconfig:"FLEETPARTS_SESSION_CHECK" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FLEETPARTS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FLEETPARTS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FLEETPARTS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	StockTopic        string `envconfig:"FLEETPARTS_PUBSUB_STOCK_TOPIC" default:"fp-stock-events"`
	StockSubscription string `envconfig:"FLEETPARTS_PUBSUB_STOCK_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FLEETPARTS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FLEETPARTS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FLEETPARTS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// StockingConfig carries the defaults applied when a transfer lazily creates
// the destination vehicle entry.
type StockingConfig struct {
	DefaultMinLevel int `envconfig:"FLEETPARTS_STOCK_DEFAULT_MIN_LEVEL" default:"0"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
