package config

const (
	EnvPrefix = "GRIDSTOCK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv      = "GRIDSTOCK_APP_ENV"
	EnvPort        = "GRIDSTOCK_APP_PORT"
	EnvLogLevel    = "GRIDSTOCK_LOG_LEVEL"
	EnvDBDSN       = "GRIDSTOCK_DB_DSN"
	EnvDBDriver    = "GRIDSTOCK_DB_DRIVER"
	EnvDBHost      = "GRIDSTOCK_DB_HOST"
	EnvDBPort      = "GRIDSTOCK_DB_PORT"
	EnvDBUser      = "GRIDSTOCK_DB_USER"
	EnvDBPassword  = "GRIDSTOCK_DB_PASSWORD"
	EnvDBName      = "GRIDSTOCK_DB_NAME"
	EnvRedisURL    = "GRIDSTOCK_REDIS_URL"
	EnvAutoMigrate = "GRIDSTOCK_AUTO_MIGRATE"

	EnvImportMaxRecords = "GRIDSTOCK_IMPORT_MAX_RECORDS"
	EnvCORSOrigins      = "GRIDSTOCK_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
