package config

const EnvPrefix = "EVENTPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	EnvAppEnv       = "EVENTPOS_APP_ENV"
	EnvPort         = "EVENTPOS_APP_PORT"
	EnvDBDriver     = "EVENTPOS_DB_DRIVER"
	EnvDBDSN        = "EVENTPOS_DB_DSN"
	EnvDBPath       = "EVENTPOS_DB_PATH"
	EnvRedisURL     = "EVENTPOS_REDIS_URL"
	EnvBaseCurrency = "EVENTPOS_BASE_CURRENCY"
	EnvCardCurrency = "EVENTPOS_CARD_SETTLEMENT_CURRENCY"
	EnvSeedRates    = "EVENTPOS_SEED_RATES"
)
