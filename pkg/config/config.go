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
	Pricing      PricingConfig
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
	Env          string `envconfig:"EVENTPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"EVENTPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EVENTPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EVENTPOS_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the origins the register UI is served from.
	CORSOrigins []string `envconfig:"EVENTPOS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver selects the gorm dialector: sqlite (embedded, default) or postgres.
	Driver string `envconfig:"EVENTPOS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"EVENTPOS_DB_DSN"`
	Path   string `envconfig:"EVENTPOS_DB_PATH" default:"eventpos.db"`

	MaxOpenConns    int           `envconfig:"EVENTPOS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"EVENTPOS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"EVENTPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVENTPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded database is in use.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional: an empty URL and address disables the cache and idempotency store.
type RedisConfig struct {
	URL          string        `envconfig:"EVENTPOS_REDIS_URL"`
	Address      string        `envconfig:"EVENTPOS_REDIS_ADDR"`
	Password     string        `envconfig:"EVENTPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVENTPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVENTPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVENTPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVENTPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVENTPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVENTPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type PricingConfig struct {
	BaseCurrency           string        `envconfig:"EVENTPOS_BASE_CURRENCY" default:"USD"`
	CardSettlementCurrency string        `envconfig:"EVENTPOS_CARD_SETTLEMENT_CURRENCY"`
	SeedRates              string        `envconfig:"EVENTPOS_SEED_RATES" default:"USD:1"`
	RateCacheTTL           time.Duration `envconfig:"EVENTPOS_RATE_CACHE_TTL" default:"10m"`
}

// SettlementCurrency returns the currency card payments settle in, defaulting to the base currency.
func (p PricingConfig) SettlementCurrency() string {
	if code := strings.ToUpper(strings.TrimSpace(p.CardSettlementCurrency)); code != "" {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(p.BaseCurrency))
}

// Rates parses the seed rate table ("USD:1,EUR:0.92").
func (p PricingConfig) Rates() (map[string]string, error) {
	out := map[string]string{}
	for _, entry := range strings.Split(p.SeedRates, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rate, ok := strings.Cut(entry, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		rate = strings.TrimSpace(rate)
		if !ok || code == "" || rate == "" {
			return nil, fmt.Errorf("invalid seed rate entry %q", entry)
		}
		out[code] = rate
	}
	return out, nil
}

func (p PricingConfig) validate() error {
	if strings.TrimSpace(p.BaseCurrency) == "" {
		return fmt.Errorf("%s is required", EnvBaseCurrency)
	}
	if _, err := p.Rates(); err != nil {
		return fmt.Errorf("%s: %w", EnvSeedRates, err)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EVENTPOS_AUTO_MIGRATE" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.Path
		}
		if db.DSN == "" {
			return fmt.Errorf("either %s or %s is required for sqlite", EnvDBDSN, EnvDBPath)
		}
		return nil
	}

	if !strings.EqualFold(db.Driver, DriverPostgres) {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required for postgres", EnvDBDSN)
	}
	u, err := url.Parse(db.DSN)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvDBDSN, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%s must be a postgres url", EnvDBDSN)
	}
	return nil
}
