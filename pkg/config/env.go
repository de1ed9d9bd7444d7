package config

const EnvPrefix = "SHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	NotifyTransportSMTP   = "smtp"
	NotifyTransportPubSub = "pubsub"
	NotifyTransportLog    = "log"
)

const (
	EnvAppEnv = "SHOP_APP_ENV"
	EnvPort   = "SHOP_APP_PORT"

	EnvDBDSN  = "SHOP_DB_DSN"
	EnvDBHost = "SHOP_DB_HOST"
	EnvDBUser = "SHOP_DB_USER"
	EnvDBName = "SHOP_DB_NAME"

	EnvRedisURL = "SHOP_REDIS_URL"

	EnvJWTSecret = "SHOP_JWT_SECRET"
	EnvJWTIssuer = "SHOP_JWT_ISSUER"

	EnvRazorpayKeyID     = "SHOP_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "SHOP_RAZORPAY_KEY_SECRET"

	EnvNotifyTransport = "SHOP_NOTIFY_TRANSPORT"
	EnvGCPProjectID    = "SHOP_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
