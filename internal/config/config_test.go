package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{DatabaseDriver: DriverSQLite, DatabasePath: "x.db", ReconcileInterval: time.Minute}, false},
		{"sqlite without path", Config{DatabaseDriver: DriverSQLite, ReconcileInterval: time.Minute}, true},
		{"postgres ok", Config{DatabaseDriver: DriverPostgres, DatabaseURL: "postgres://db", ReconcileInterval: time.Minute}, false},
		{"postgres without dsn", Config{DatabaseDriver: DriverPostgres, ReconcileInterval: time.Minute}, true},
		{"unknown driver", Config{DatabaseDriver: "mysql", ReconcileInterval: time.Minute}, true},
		{"zero interval", Config{DatabaseDriver: DriverSQLite, DatabasePath: "x.db"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RECONCILE_INTERVAL", "90s")
	t.Setenv("MODERATION_EXTRA_WORDS", "alpha,beta")

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "devotional.db", cfg.DatabasePath)
	assert.Equal(t, 90*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.ModerationExtraWords)
}
