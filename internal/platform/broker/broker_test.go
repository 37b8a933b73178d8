package broker

import (
	"context"
	"testing"

	"github.com/georgemunganga/stockly-pos/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, SplitBrokers(""))
}

func TestNewSelectsPublisher(t *testing.T) {
	pub, err := New(context.Background(), config.Config{Broker: config.BrokerLog})
	require.NoError(t, err)
	assert.IsType(t, LogPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), "stockly.sales", "k", []byte(`{}`)))

	pub, err = New(context.Background(), config.Config{Broker: config.BrokerKafka, KafkaBrokers: "localhost:9092"})
	require.NoError(t, err)
	assert.IsType(t, &Kafka{}, pub)
	assert.NoError(t, pub.Close())

	_, err = New(context.Background(), config.Config{Broker: "smoke-signals"})
	assert.Error(t, err)
}
