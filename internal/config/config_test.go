package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "data/devis.json", cfg.Store.FilePath)
	assert.Equal(t, 2, cfg.Mail.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Mail.RetryDelay)
	assert.Equal(t, 720*time.Hour, cfg.ActionLink.TTL)
	assert.Equal(t, SignatureStoreLocal, cfg.Signature.Store)
	assert.Equal(t, int64(2<<20), cfg.Signature.MaxBytes)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("MAIL_MAX_RETRIES", "4")
	t.Setenv("ACTION_TOKEN_SECRET", "s3cr3t")
	t.Setenv("DASHBOARD_URL", "https://example.com/admin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StoreDriverMySQL, cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Mail.MaxRetries)
	assert.Equal(t, "s3cr3t", cfg.ActionLink.Secret)
	assert.Equal(t, "https://example.com/admin", cfg.Company.DashboardURL)
}

func TestLoad_InvalidDuration(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("MAIL_RETRY_DELAY", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_RETRY_DELAY")
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SIGNATURE_STORE", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestLoad_UnknownStoreDriver(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WriteTimeoutCoversMailRetries(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	// two legs of three 15s attempts separated by two 2s delays
	assert.Equal(t, 98*time.Second, cfg.Mail.MinWriteTimeout())
	assert.GreaterOrEqual(t, cfg.Server.WriteTimeout, cfg.Mail.MinWriteTimeout())
}

func TestLoad_WriteTimeoutFollowsRetrySettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SMTP_TIMEOUT", "5s")
	t.Setenv("MAIL_MAX_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Mail.MinWriteTimeout())
	assert.Equal(t, 20*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_WriteTimeoutTooShort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_WRITE_TIMEOUT")
}

func TestLoad_TrustedProxies(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,127.0.0.1 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
}
