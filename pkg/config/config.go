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
	Razorpay     RazorpayConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MITHRA_APP_ENV" required:"true"`
	Port         string `envconfig:"MITHRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MITHRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MITHRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MITHRA_DB_DSN"`
	Driver string `envconfig:"MITHRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MITHRA_DB_HOST"`
	LegacyPort     int    `envconfig:"MITHRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MITHRA_DB_USER"`
	LegacyPassword string `envconfig:"MITHRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MITHRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MITHRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MITHRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MITHRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MITHRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MITHRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MITHRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MITHRA_REDIS_ADDR"`
	Password     string        `envconfig:"MITHRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MITHRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MITHRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MITHRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MITHRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MITHRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MITHRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"MITHRA_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"MITHRA_RAZORPAY_KEY_SECRET" required:"true"`
	Env       string `envconfig:"MITHRA_RAZORPAY_ENV" default:"test"`
}

// Environment returns the normalized Razorpay environment (test/live).
func (r RazorpayConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(r.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PricingConfig drives the flat shipping fee and tax rate applied at quote time.
type PricingConfig struct {
	Currency          string `envconfig:"MITHRA_PRICING_CURRENCY" default:"INR"`
	ShippingFlatMinor int64  `envconfig:"MITHRA_PRICING_SHIPPING_FLAT_MINOR" default:"5000"`
	TaxRatePercent    string `envconfig:"MITHRA_PRICING_TAX_RATE_PERCENT" default:"18"`
}

func (p PricingConfig) validate() error {
	if p.ShippingFlatMinor < 0 {
		return fmt.Errorf("shipping flat fee must be non-negative")
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("pricing currency must be a 3-letter code")
	}
	return nil
}

type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"MITHRA_CHECKOUT_SESSION_TTL" default:"1h"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"MITHRA_CRON_INTERVAL" default:"5m"`
	StaleCartAge time.Duration `envconfig:"MITHRA_CRON_STALE_CART_AGE" default:"720h"`
	LockTTL      time.Duration `envconfig:"MITHRA_CRON_LOCK_TTL" default:"4m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MITHRA_AUTO_MIGRATE" default:"false"`
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
