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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	Catalog       CatalogConfig
	Pricing       PricingConfig
	ClientState   ClientStateConfig
	Notifications NotificationsConfig
	Cron          CronConfig
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
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"OMNICART_APP_ENV" required:"true"`
	Port         string        `envconfig:"OMNICART_APP_PORT" required:"true"`
	LogLevel     string        `envconfig:"OMNICART_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"OMNICART_LOG_WARN_STACK" default:"false"`
	ShutdownWait time.Duration `envconfig:"OMNICART_SHUTDOWN_WAIT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"OMNICART_APP_WRITE_TIMEOUT" default:"30s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OMNICART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"OMNICART_DB_DSN"`
	Driver string `envconfig:"OMNICART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OMNICART_DB_HOST"`
	LegacyPort     int    `envconfig:"OMNICART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OMNICART_DB_USER"`
	LegacyPassword string `envconfig:"OMNICART_DB_PASSWORD"`
	LegacyName     string `envconfig:"OMNICART_DB_NAME"`
	LegacySSLMode  string `envconfig:"OMNICART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OMNICART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OMNICART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OMNICART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OMNICART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets a sqlite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// Redis is optional: without a URL or address the storefront keeps client
// state, sessions and rate limits in process memory.
type RedisConfig struct {
	URL          string        `envconfig:"OMNICART_REDIS_URL"`
	Address      string        `envconfig:"OMNICART_REDIS_ADDR"`
	Password     string        `envconfig:"OMNICART_REDIS_PASSWORD"`
	DB           int           `envconfig:"OMNICART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OMNICART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OMNICART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OMNICART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OMNICART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OMNICART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"OMNICART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OMNICART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OMNICART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTTL returns the lifetime of an access token and its server session.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OMNICART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OMNICART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OMNICART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OMNICART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OMNICART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"OMNICART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"OMNICART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"OMNICART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"OMNICART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"OMNICART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"OMNICART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"OMNICART_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OMNICART_AUTO_MIGRATE" default:"false"`
}

// CatalogConfig controls where products come from and how listings page.
type CatalogConfig struct {
	Source         string        `envconfig:"OMNICART_CATALOG_SOURCE" default:"file"`
	Path           string        `envconfig:"OMNICART_CATALOG_PATH" default:"data/catalog.json"`
	GridPageSize   int           `envconfig:"OMNICART_CATALOG_GRID_PAGE_SIZE" default:"6"`
	HomePageSize   int           `envconfig:"OMNICART_CATALOG_HOME_PAGE_SIZE" default:"3"`
	RelatedCount   int           `envconfig:"OMNICART_CATALOG_RELATED_COUNT" default:"4"`
	RevealDelay    time.Duration `envconfig:"OMNICART_CATALOG_REVEAL_DELAY" default:"0s"`
	ReloadInterval time.Duration `envconfig:"OMNICART_CATALOG_RELOAD_INTERVAL" default:"15m"`
}

func (c CatalogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Source)) {
	case CatalogSourceFile, CatalogSourceDB:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCatalogSource, CatalogSourceFile, CatalogSourceDB)
	}
	if c.GridPageSize <= 0 || c.HomePageSize <= 0 {
		return fmt.Errorf("catalog page sizes must be positive")
	}
	if c.RelatedCount < 0 {
		return fmt.Errorf("%s cannot be negative", EnvCatalogRelatedCount)
	}
	return nil
}

// PricingConfig is the promo and shipping table read by the price calculator.
// PromoCodes is parsed from "CODE:PCT,CODE:PCT".
type PricingConfig struct {
	PromoCodes            map[string]int `envconfig:"OMNICART_PRICING_PROMO_CODES" default:"OMNI10:10,WELCOME20:20"`
	FreeShippingThreshold int64          `envconfig:"OMNICART_PRICING_FREE_SHIPPING_THRESHOLD" default:"999"`
	FlatShippingFee       int64          `envconfig:"OMNICART_PRICING_FLAT_SHIPPING_FEE" default:"99"`
	Currency              string         `envconfig:"OMNICART_PRICING_CURRENCY" default:"INR"`
}

func (p PricingConfig) validate() error {
	for code, pct := range p.PromoCodes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("%s contains an empty code", EnvPricingPromoCodes)
		}
		if pct < 0 || pct > 100 {
			return fmt.Errorf("promo code %q discount %d outside 0-100", code, pct)
		}
	}
	if p.FreeShippingThreshold < 0 || p.FlatShippingFee < 0 {
		return fmt.Errorf("shipping threshold and fee must be non-negative")
	}
	return nil
}

// ClientStateConfig governs the per-visitor persisted state (cart, wishlist, auth keys).
type ClientStateConfig struct {
	TTL       time.Duration `envconfig:"OMNICART_CLIENT_STATE_TTL" default:"720h"`
	IdleEvict time.Duration `envconfig:"OMNICART_CLIENT_STATE_IDLE_EVICT" default:"2h"`
}

type NotificationsConfig struct {
	TTL      time.Duration `envconfig:"OMNICART_NOTIFICATIONS_TTL" default:"3s"`
	MaxStack int           `envconfig:"OMNICART_NOTIFICATIONS_MAX_STACK" default:"5"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"OMNICART_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"OMNICART_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
