package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PAYMENT_PROVIDER_SECRET", "shh")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "shh", cfg.Payment.ProviderSecret)
	assert.Equal(t, "60", cfg.Payment.OrderTTLMinutes)
	assert.Equal(t, "*/10 * * * *", cfg.Process.ExpireSchedule)
	assert.Equal(t, "fundlane.events", cfg.AMQP.Exchange)
}

func TestDSN(t *testing.T) {
	pg := PostgreSQL{
		Driver:   "postgres",
		Host:     "db",
		Port:     "5432",
		Database: "fundlane",
		Username: "svc",
		Password: "pw",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://svc:pw@db:5432/fundlane?sslmode=disable", pg.DSN())
}
