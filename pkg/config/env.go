package config

const EnvPrefix = "OMNICART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CatalogSourceFile = "file"
	CatalogSourceDB   = "db"
)

const (
	EnvAppEnv = "OMNICART_APP_ENV"
	EnvPort   = "OMNICART_APP_PORT"

	EnvDBDSN    = "OMNICART_DB_DSN"
	EnvDBDriver = "OMNICART_DB_DRIVER"
	EnvDBHost   = "OMNICART_DB_HOST"
	EnvDBUser   = "OMNICART_DB_USER"
	EnvDBName   = "OMNICART_DB_NAME"

	EnvRedisURL = "OMNICART_REDIS_URL"

	EnvJWTSecret  = "OMNICART_JWT_SECRET"
	EnvJWTIssuer  = "OMNICART_JWT_ISSUER"
	EnvJWTExpMins = "OMNICART_JWT_EXPIRATION_MINUTES"

	EnvCatalogSource       = "OMNICART_CATALOG_SOURCE"
	EnvCatalogRelatedCount = "OMNICART_CATALOG_RELATED_COUNT"

	EnvPricingPromoCodes = "OMNICART_PRICING_PROMO_CODES"
	EnvPricingThreshold  = "OMNICART_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvPricingFlatFee    = "OMNICART_PRICING_FLAT_SHIPPING_FEE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
