package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"JWT_SECRET": "s3creto"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 30*time.Second, cfg.Tax.Timeout)
	assert.Equal(t, 120*time.Second, cfg.Tax.LockTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Nil(t, cfg.DB.Tenants)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Valores(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"JWT_SECRET":           "s3creto",
		"APP_ENV":              "production",
		"DB_PORT":              "6543",
		"DB_AUTO_MIGRATE":      "true",
		"DB_TENANTS":           "empresa_a, empresa_b,,",
		"REDIS_ADDR":           "redis:6379",
		"REDIS_DB":             "2",
		"TAX_TIMEOUT_SECONDS":  "10",
		"TAX_LOCK_TTL_SECONDS": "60",
		"TAX_DEFAULT_BASE_URL": " https://autoridad.example ",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, []string{"empresa_a", "empresa_b"}, cfg.DB.Tenants)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Tax.Timeout)
	assert.Equal(t, time.Minute, cfg.Tax.LockTTL)
	assert.Equal(t, "https://autoridad.example", cfg.Tax.DefaultBaseURL)
}

func TestFromViper_Errores(t *testing.T) {
	_, err := fromViper(newViper(nil))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = fromViper(newViper(map[string]any{
		"JWT_SECRET":           "x",
		"TAX_TIMEOUT_SECONDS":  "60",
		"TAX_LOCK_TTL_SECONDS": "30",
	}))
	assert.ErrorContains(t, err, "TAX_LOCK_TTL_SECONDS")
}

func TestDBConfig_DSNYForDatabase(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "postgres", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/postgres?sslmode=disable", c.ConnectionString())

	dsn, err := c.ForDatabase("empresa_a")
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/empresa_a?sslmode=disable", dsn)

	c.DatabaseURL = "postgresql://u:p@host:6543/base?sslmode=require"
	dsn, err = c.ForDatabase("empresa_b")
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@host:6543/empresa_b?sslmode=require", dsn)

	_, err = c.ForDatabase(" ")
	assert.Error(t, err)

	c.DatabaseURL = "host=db dbname=x"
	_, err = c.ForDatabase("empresa_a")
	assert.Error(t, err)
}
