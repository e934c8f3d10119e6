package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CHILDMINDER_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Login.LinkTTL)
	assert.Equal(t, 3, cfg.Login.MaxSMSResends)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHILDMINDER_ADDR", ":9090")
	t.Setenv("PUBLIC_URL", "https://apply.example.gov.uk/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOGIN_SMS_CODE_TTL", "5m")
	t.Setenv("LOGIN_MAX_SMS_RESENDS", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://apply.example.gov.uk", cfg.Server.PublicURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Login.SMSCodeTTL)
	assert.Equal(t, 3, cfg.Login.MaxSMSResends, "unparseable values fall back to defaults")
}
