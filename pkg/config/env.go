package config

// EnvPrefix is empty because every field carries its fully qualified name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "SMARTLIST_APP_ENV"
	EnvPort                = "SMARTLIST_APP_PORT"
	EnvDBDSN               = "SMARTLIST_DB_DSN"
	EnvDBHost              = "SMARTLIST_DB_HOST"
	EnvDBUser              = "SMARTLIST_DB_USER"
	EnvDBName              = "SMARTLIST_DB_NAME"
	EnvUseSQLite           = "SMARTLIST_USE_SQLITE"
	EnvRedisURL            = "SMARTLIST_REDIS_URL"
	EnvJWTSecret           = "SMARTLIST_JWT_SECRET"
	EnvDefaultCriticalDays = "SMARTLIST_DEFAULT_CRITICAL_DAYS"
	EnvListRetentionDays   = "SMARTLIST_LIST_RETENTION_DAYS"
	EnvCORSOrigins         = "SMARTLIST_CORS_ORIGINS"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
