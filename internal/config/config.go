package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envCORSAllowedOrigins    = "CORS_ALLOWED_ORIGINS"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDatabaseURL           = "DATABASE_URL"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envMediaBucket           = "MEDIA_BUCKET"
	envMediaURLTimeLimit     = "MEDIA_URL_TIME_LIMIT"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envBcryptCost            = "BCRYPT_COST"
	envPasswordResetTTL      = "PASSWORD_RESET_TTL"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
	envSiteURL               = "SITE_URL"
	envAppURL                = "APP_URL"
	envEmailFrom             = "EMAIL_FROM"
	envResendAPIKey          = "RESEND_API_KEY"
	envSendGridAPIKey        = "SENDGRID_API_KEY"
	envEmailMaxInFlight      = "EMAIL_MAX_IN_FLIGHT"
	envStripeSecretKey       = "STRIPE_SECRET_KEY"
	envStripeWebhookSecret   = "STRIPE_WEBHOOK_SECRET"
	envStripePricePro        = "STRIPE_PRICE_PRO"
	envStripePriceAgency     = "STRIPE_PRICE_AGENCY"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envStatsCacheTTL         = "STATS_CACHE_TTL"
	envWeeklyReportSchedule  = "WEEKLY_REPORT_SCHEDULE"
	envWeeklyReportEnabled   = "WEEKLY_REPORT_ENABLED"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 10 * time.Second
	defaultServerWriteTimeout  = 15 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "lincognito"
	defaultDBUser              = "lincognito_app"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 25
	defaultDBMinConns          = 5
	defaultAWSRegion           = "us-east-1"
	defaultJWTExpiry           = 7 * 24 * time.Hour
	defaultBcryptCost          = 12
	defaultPasswordResetTTL    = time.Hour
	defaultMediaURLExpiry      = 15 * time.Minute
	defaultLogLevel            = "info"
	defaultLogFormat           = "json"
	defaultSiteURL             = "https://lincognito.com"
	defaultAppURL              = "https://app.lincognito.com"
	defaultEmailFrom           = "Lincognito <hello@lincognito.com>"
	defaultEmailMaxInFlight    = 8
	defaultStatsCacheTTL       = 5 * time.Minute
	defaultWeeklyReportCron    = "0 8 * * MON"
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	minBcryptCost              = 4
	maxBcryptCost              = 31
	errPortRequiredFmt         = "PORT must be set"
	errDatabaseRequiredFmt     = "DATABASE_URL or DB_PASSWORD must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errBcryptCostRangeFmt      = "BCRYPT_COST must be between %d and %d"
	errMediaCredentialsFmt     = "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set when MEDIA_BUCKET is set"
	errStripeWebhookFmt        = "STRIPE_WEBHOOK_SECRET must be set when STRIPE_SECRET_KEY is set"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	JWT      JWTConfig
	Log      LogConfig
	Email    EmailConfig
	Stripe   StripeConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// Profiling exposes /debug/pprof; keep it off outside of load tests.
	Profiling bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MediaBucket     string
	MediaURLExpiry  time.Duration
}

// MediaEnabled reports whether post media uploads are configured.
func (c AWSConfig) MediaEnabled() bool {
	return c.MediaBucket != ""
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type EmailConfig struct {
	From           string
	ResendAPIKey   string
	SendGridAPIKey string
	MaxInFlight    int
}

// Enabled reports whether at least one email provider is configured.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" || c.SendGridAPIKey != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PricePro      string
	PriceAgency   string
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type AppConfig struct {
	SiteURL              string
	AppURL               string
	BcryptCost           int
	PasswordResetTTL     time.Duration
	StatsCacheTTL        time.Duration
	WeeklyReportSchedule string
	WeeklyReportEnabled  bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			AllowedOrigins:  getListEnv(envCORSAllowedOrigins),
			Profiling:       getBoolEnv(envEnableProfiling, false),
		},
		Database: loadDatabase(),
		AWS: AWSConfig{
			Region:          getEnv(envAWSRegion, defaultAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			MediaBucket:     os.Getenv(envMediaBucket),
			MediaURLExpiry:  getDurationEnv(envMediaURLTimeLimit, defaultMediaURLExpiry),
		},
		JWT: JWTConfig{
			Secret:         requireEnv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
		Email: EmailConfig{
			From:           getEnv(envEmailFrom, defaultEmailFrom),
			ResendAPIKey:   os.Getenv(envResendAPIKey),
			SendGridAPIKey: os.Getenv(envSendGridAPIKey),
			MaxInFlight:    getIntEnv(envEmailMaxInFlight, defaultEmailMaxInFlight),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv(envStripeSecretKey),
			WebhookSecret: os.Getenv(envStripeWebhookSecret),
			PricePro:      os.Getenv(envStripePricePro),
			PriceAgency:   os.Getenv(envStripePriceAgency),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv(envRedisAddr),
			Password: os.Getenv(envRedisPassword),
			DB:       getIntEnv(envRedisDB, 0),
		},
		App: AppConfig{
			SiteURL:              strings.TrimRight(getEnv(envSiteURL, defaultSiteURL), "/"),
			AppURL:               strings.TrimRight(getEnv(envAppURL, defaultAppURL), "/"),
			BcryptCost:           getIntEnv(envBcryptCost, defaultBcryptCost),
			PasswordResetTTL:     getDurationEnv(envPasswordResetTTL, defaultPasswordResetTTL),
			StatsCacheTTL:        getDurationEnv(envStatsCacheTTL, defaultStatsCacheTTL),
			WeeklyReportSchedule: getEnv(envWeeklyReportSchedule, defaultWeeklyReportCron),
			WeeklyReportEnabled:  getBoolEnv(envWeeklyReportEnabled, true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for commands that never serve HTTP.
func LoadDatabase() (*DatabaseConfig, error) {
	db := loadDatabase()
	if err := db.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}
	return &db, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		URL:      os.Getenv(envDatabaseURL),
		Host:     getEnv(envDBHost, defaultDBHost),
		Port:     getIntEnv(envDBPort, defaultDBPort),
		Database: getEnv(envDBName, defaultDBName),
		User:     getEnv(envDBUser, defaultDBUser),
		Password: os.Getenv(envDBPassword),
		SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
		MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
		MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.App.BcryptCost < minBcryptCost || c.App.BcryptCost > maxBcryptCost {
		return fmt.Errorf(errBcryptCostRangeFmt, minBcryptCost, maxBcryptCost)
	}

	if c.AWS.MediaEnabled() && (c.AWS.AccessKeyID == "" || c.AWS.SecretAccessKey == "") {
		return fmt.Errorf(errMediaCredentialsFmt)
	}

	if c.Stripe.Enabled() && c.Stripe.WebhookSecret == "" {
		return fmt.Errorf(errStripeWebhookFmt)
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" && c.Password == "" {
		return fmt.Errorf(errDatabaseRequiredFmt)
	}
	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

// DSN returns DATABASE_URL when set, otherwise a keyword/value string built from the DB_* variables.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		warnings.requiredEnvNotSet(key)
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
