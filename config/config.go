package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string
	// LogLevel overrides the env-derived level when set (debug, info, warn, error)
	LogLevel string

	// Storage backend: "badger" (embedded) or "postgres" (postgres + redis)
	StorageDriver  string
	BadgerPath     string
	BadgerInMemory bool

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// JWT
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	// Sessions and entitlement
	SessionTTL     time.Duration
	TrialLength    time.Duration
	DebugTogglePro bool

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunSender  string
	MailgunAPIBase string // empty for the US region

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESRoutinesIndex    string

	// OpenAI routine generation
	OpenAIAPIKey string
	OpenAIModel  string

	// Company/Links for emails
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	UnsubscribeURL string
	PremiumURL     string

	// Email sending toggle (welcome / trial started)
	MailSendEnabled bool

	// Debug metrics (/api/debug/vars and /debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

const (
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
)

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName:  getenv("APP_NAME", "morningforge"),
		Env:      getenv("APP_ENV", "development"),
		Port:     getenv("PORT", "8080"),
		GinMode:  getenv("GIN_MODE", "release"),
		LogLevel: getenv("LOG_LEVEL", ""),

		StorageDriver:  strings.ToLower(getenv("STORAGE_DRIVER", StorageBadger)),
		BadgerPath:     getenv("BADGER_PATH", "data/badger"),
		BadgerInMemory: getbool("BADGER_IN_MEMORY", false),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "morningforge"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "devrefreshsecret"),
		AccessTTL:        getdur("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       getdur("JWT_REFRESH_TTL", 168*time.Hour),

		SessionTTL:     getdur("SESSION_TTL", 168*time.Hour),
		TrialLength:    getdur("TRIAL_LENGTH", 7*24*time.Hour),
		DebugTogglePro: getbool("DEBUG_TOGGLE_PRO_ENABLED", false),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MailgunDomain:  getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:  getenv("MAILGUN_API_KEY", ""),
		MailgunSender:  getenv("MAILGUN_SENDER", ""),
		MailgunAPIBase: getenv("MAILGUN_API_BASE", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESRoutinesIndex:    getenv("ES_ROUTINES_INDEX", "saved_routines"),

		OpenAIAPIKey: getenv("OPENAI_API_KEY", ""),
		OpenAIModel:  getenv("OPENAI_MODEL", "gpt-4o-mini"),

		CompanyName:    getenv("COMPANY_NAME", ""),
		CompanyAddress: getenv("COMPANY_ADDRESS", ""),
		LogoURL:        getenv("LOGO_URL", ""),
		SupportURL:     getenv("SUPPORT_URL", ""),
		PrivacyURL:     getenv("PRIVACY_URL", ""),
		UnsubscribeURL: getenv("UNSUBSCRIBE_URL", ""),
		PremiumURL:     getenv("PREMIUM_URL", "http://localhost:5173/premium"),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// UsePostgres reports whether accounts live in postgres and sessions/buckets in redis.
func (c *Config) UsePostgres() bool { return c.StorageDriver == StoragePostgres }

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
