package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/platform/config"
)

func TestNewProducerWithoutBrokers(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{AuditTopic: "audit"}, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}
