package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                  "development",
		JWTSecret:            "secure-secret-at-least-32-chars-long",
		JWTTTLHours:          12,
		DBPassword:           "secure-password",
		DBSSLMode:            "require",
		Port:                 "8080",
		ModerationPolicy:     PolicyPermissive,
		NotifyTimeoutSeconds: 10,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateModerationPolicy(t *testing.T) {
	for _, policy := range []string{PolicyPermissive, PolicyStrict} {
		c := validConfig()
		c.ModerationPolicy = policy
		assert.NoError(t, c.Validate(), policy)
	}

	c := validConfig()
	c.ModerationPolicy = "lenient"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateNotifyEndpoint(t *testing.T) {
	tests := []struct {
		endpoint    string
		expectError bool
	}{
		{"", false},
		{"https://mail.example.org/functions/v1/send-book-approval-email", false},
		{"http://localhost:9000/notify", false},
		{"ftp://mail.example.org", true},
		{"/relative/path", true},
	}

	for _, tt := range tests {
		c := validConfig()
		c.NotifyEndpoint = tt.endpoint
		err := c.Validate()
		if tt.expectError {
			assert.Error(t, err, tt.endpoint)
		} else {
			assert.NoError(t, err, tt.endpoint)
		}
	}
}

func TestConfig_ProductionRejectsDevOperator(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DevOperatorPassword = "letmein"
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("MODERATION_POLICY")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("MODERATION_POLICY", " Strict ")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, PolicyStrict, c.ModerationPolicy)
	assert.False(t, c.LoanInventoryTracking)
}
