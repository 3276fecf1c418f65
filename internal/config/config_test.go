package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LEDGER_TIMEZONE", "LEDGER_DUE_HOUR", "LEDGER_RATIOS", "LEDGER_BUCKET_OWNERS", "LEDGER_COLLECT_SPLITS", "ALERT_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 9, cfg.DueHour)
	assert.Len(t, cfg.Ratios, 5)
	assert.Empty(t, cfg.BucketOwners)
	assert.True(t, cfg.CollectSplits)
	assert.Equal(t, 5*time.Minute, cfg.AlertsCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEDGER_DUE_HOUR", "7")
	t.Setenv("LEDGER_RATIOS", "ops:70,reserve:30")
	t.Setenv("LEDGER_BUCKET_OWNERS", "ops:12")
	t.Setenv("LEDGER_COLLECT_SPLITS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.DueHour)
	require.Len(t, cfg.Ratios, 2)
	assert.Equal(t, "reserve", cfg.Ratios[1].Bucket)
	assert.Equal(t, uint(12), cfg.BucketOwners["ops"])
	assert.False(t, cfg.CollectSplits)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LEDGER_DUE_HOUR", "25")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseBucketOwners(t *testing.T) {
	owners, err := ParseBucketOwners("partner_a:1, partner_b : 2")
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"partner_a": 1, "partner_b": 2}, owners)

	_, err = ParseBucketOwners("partner_a")
	assert.Error(t, err)

	_, err = ParseBucketOwners("partner_a:x")
	assert.Error(t, err)
}
