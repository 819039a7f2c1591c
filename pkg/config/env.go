package config

// EnvPrefix is the envconfig prefix shared by every FleetParts binary.
const EnvPrefix = "fleetparts"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "FLEETPARTS_APP_ENV"
	EnvAppPort    = "FLEETPARTS_APP_PORT"
	EnvDBDSN      = "FLEETPARTS_DB_DSN"
	EnvDBHost     = "FLEETPARTS_DB_HOST"
	EnvDBUser     = "FLEETPARTS_DB_USER"
	EnvDBName     = "FLEETPARTS_DB_NAME"
	EnvRedisURL   = "FLEETPARTS_REDIS_URL"
	EnvJWTSecret  = "FLEETPARTS_JWT_SECRET"
	EnvJWTIssuer  = "FLEETPARTS_JWT_ISSUER"
	EnvJWTExpMins = "FLEETPARTS_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
