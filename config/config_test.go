package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 900, cfg.RateLimit.WindowSec)
	assert.Equal(t, 1, cfg.Voucher.UsageLimit)
	assert.Equal(t, 365, cfg.Voucher.ValidityDays)
	assert.True(t, cfg.Voucher.CommissionRate.Equal(decimal.RequireFromString("0.15")))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VOUCHER_USAGE_LIMIT", "3")
	t.Setenv("VOUCHER_COMMISSION_RATE", "0.2")
	t.Setenv("JWT_EXPIRE_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Voucher.UsageLimit)
	assert.True(t, cfg.Voucher.CommissionRate.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, 168, cfg.JWT.ExpireHours, "unparsable ints fall back to the default")
}

func TestLoadRejectsBadVoucherSettings(t *testing.T) {
	t.Run("usage limit", func(t *testing.T) {
		t.Setenv("VOUCHER_USAGE_LIMIT", "0")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("rate not a number", func(t *testing.T) {
		t.Setenv("VOUCHER_COMMISSION_RATE", "fifteen")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("rate above one", func(t *testing.T) {
		t.Setenv("VOUCHER_COMMISSION_RATE", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "freestay", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/freestay?sslmode=disable", c.DSN())

	c.URL = "postgres://elsewhere/x"
	assert.Equal(t, "postgres://elsewhere/x", c.DSN())
}
