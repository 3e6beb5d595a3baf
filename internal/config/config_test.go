package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "k7Qx2Lm9Rv4Tz8Wb1Nc6Yp3Hd5Jf0GsA"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(envJWTSecret, strongSecret)
	t.Setenv(envDatabaseURL, "postgres://u:p@localhost:5432/lincognito")
	t.Setenv(envCORSAllowedOrigins, "https://app.lincognito.com, http://localhost:3000 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.lincognito.com", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@localhost:5432/lincognito", cfg.Database.DSN())
	assert.Equal(t, defaultWeeklyReportCron, cfg.App.WeeklyReportSchedule)
	assert.True(t, cfg.App.WeeklyReportEnabled)
	assert.False(t, cfg.Stripe.Enabled())
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.AWS.MediaEnabled())
}

func TestLoad_DurationAcceptsMinutes(t *testing.T) {
	t.Setenv(envJWTSecret, strongSecret)
	t.Setenv(envDBPassword, "pw")
	t.Setenv(envJWTExpiry, "90")
	t.Setenv(envPasswordResetTTL, "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.JWT.ExpiryDuration)
	assert.Equal(t, 30*time.Minute, cfg.App.PasswordResetTTL)
	assert.Contains(t, cfg.Database.DSN(), "password=pw")
}

func TestLoad_MissingDatabase(t *testing.T) {
	t.Setenv(envJWTSecret, strongSecret)
	t.Setenv(envDatabaseURL, "")
	t.Setenv(envDBPassword, "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_JWTSecret(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{URL: "postgres://x"},
			JWT:      JWTConfig{Secret: strongSecret},
			App:      AppConfig{BcryptCost: 12},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.JWT.Secret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.JWT.Secret = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	assert.Error(t, cfg.Validate())
}

func TestValidate_StripeNeedsWebhookSecret(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URL: "postgres://x"},
		JWT:      JWTConfig{Secret: strongSecret},
		App:      AppConfig{BcryptCost: 12},
		Stripe:   StripeConfig{SecretKey: "sk_test_123"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Stripe.WebhookSecret = "whsec_123"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MediaNeedsCredentials(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URL: "postgres://x"},
		JWT:      JWTConfig{Secret: strongSecret},
		App:      AppConfig{BcryptCost: 12},
		AWS:      AWSConfig{MediaBucket: "lincognito-media"},
	}
	assert.Error(t, cfg.Validate())

	cfg.AWS.AccessKeyID = "AKIA"
	cfg.AWS.SecretAccessKey = "secret"
	assert.NoError(t, cfg.Validate())
}
