package config

const (
	EnvPrefix = "BUZDEALZ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "BUZDEALZ_APP_ENV"
	EnvPort     = "BUZDEALZ_APP_PORT"
	EnvLogLevel = "BUZDEALZ_LOG_LEVEL"

	EnvDBDSN    = "BUZDEALZ_DB_DSN"
	EnvDBDriver = "BUZDEALZ_DB_DRIVER"
	EnvDBPath   = "BUZDEALZ_DB_PATH"
	EnvDBHost   = "BUZDEALZ_DB_HOST"
	EnvDBUser   = "BUZDEALZ_DB_USER"
	EnvDBName   = "BUZDEALZ_DB_NAME"

	EnvRedisURL = "BUZDEALZ_REDIS_URL"

	EnvJWTSecret  = "BUZDEALZ_JWT_SECRET"
	EnvJWTIssuer  = "BUZDEALZ_JWT_ISSUER"
	EnvJWTExpMins = "BUZDEALZ_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID         = "BUZDEALZ_GCP_PROJECT_ID"
	EnvPubSubAnalyticsTopic = "BUZDEALZ_PUBSUB_ANALYTICS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
