package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "10", cfg.TaxRate.String())
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, BrokerLog, cfg.Broker)
	assert.Equal(t, time.Second, cfg.OutboxInterval)
	assert.False(t, cfg.AuthRequired)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"APP_PORT":      "9090",
		"DB_DRIVER":     "PGX",
		"TAX_RATE":      "12.5",
		"AUTH_REQUIRED": "true",
		"BROKER":        "kafka",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, "12.5", cfg.TaxRate.String())
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, BrokerKafka, cfg.Broker)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"tax rate":        {"TAX_RATE": "ten"},
		"negative tax":    {"TAX_RATE": "-1"},
		"threshold":       {"LOW_STOCK_THRESHOLD": "x"},
		"interval":        {"OUTBOX_INTERVAL_MS": "0"},
		"driver":          {"DB_DRIVER": "mysql"},
		"broker":          {"BROKER": "nats"},
		"kafka no broker": {"BROKER": "kafka"},
		"auth flag":       {"AUTH_REQUIRED": "maybe"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
