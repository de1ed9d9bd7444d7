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
	Razorpay      RazorpayConfig
	SMTP          SMTPConfig
	Notifications NotificationsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validateNotifications(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SHOP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SHOP_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"SHOP_CORS_ORIGINS" default:"http://localhost:3000"`

	CheckoutRateWindow time.Duration `envconfig:"SHOP_CHECKOUT_RATE_WINDOW" default:"1m"`
	CheckoutRateLimit  int           `envconfig:"SHOP_CHECKOUT_RATE_LIMIT" default:"10"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOP_DB_DSN"`
	Driver string `envconfig:"SHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOP_DB_USER"`
	LegacyPassword string `envconfig:"SHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SHOP_DB_SLOW_QUERY" default:"250ms"`
}

// IsSQLite reports whether the local sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"SHOP_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"SHOP_RAZORPAY_KEY_SECRET" required:"true"`
	BaseURL   string        `envconfig:"SHOP_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Currency  string        `envconfig:"SHOP_RAZORPAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"SHOP_RAZORPAY_TIMEOUT" default:"10s"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SHOP_SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SHOP_SMTP_PORT" default:"587"`
	Username string `envconfig:"SHOP_SMTP_USERNAME"`
	Password string `envconfig:"SHOP_SMTP_PASSWORD"`
	From     string `envconfig:"SHOP_SMTP_FROM"`
	FromName string `envconfig:"SHOP_SMTP_FROM_NAME" default:"SIT Dress Shop"`
}

// Address returns host:port for the SMTP dialer.
func (s SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Sender returns the From address, falling back to the username.
func (s SMTPConfig) Sender() string {
	if from := strings.TrimSpace(s.From); from != "" {
		return from
	}
	return strings.TrimSpace(s.Username)
}

type NotificationsConfig struct {
	Transport   string        `envconfig:"SHOP_NOTIFY_TRANSPORT" default:"smtp"`
	Workers     int           `envconfig:"SHOP_NOTIFY_WORKERS" default:"2"`
	QueueSize   int           `envconfig:"SHOP_NOTIFY_QUEUE_SIZE" default:"256"`
	SendTimeout time.Duration `envconfig:"SHOP_NOTIFY_SEND_TIMEOUT" default:"15s"`
	DedupeTTL   time.Duration `envconfig:"SHOP_NOTIFY_DEDUPE_TTL" default:"72h"`
	FrontendURL string        `envconfig:"SHOP_FRONTEND_URL" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SHOP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"SHOP_PUBSUB_NOTIFICATION_TOPIC" default:"shop-notifications"`
	NotificationSubscription string `envconfig:"SHOP_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"SHOP_CRON_INTERVAL" default:"1h"`
	PaymentIntentTTL time.Duration `envconfig:"SHOP_PAYMENT_INTENT_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOP_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validateNotifications() error {
	transport := strings.ToLower(strings.TrimSpace(c.Notifications.Transport))
	switch transport {
	case NotifyTransportSMTP, NotifyTransportLog:
	case NotifyTransportPubSub:
		if strings.TrimSpace(c.GCP.ProjectID) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvNotifyTransport, NotifyTransportPubSub)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvNotifyTransport, c.Notifications.Transport)
	}
	c.Notifications.Transport = transport
	return nil
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
