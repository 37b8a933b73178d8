// Package broker provides outbox.Publisher implementations.
package broker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/georgemunganga/stockly-pos/internal/outbox"
	"github.com/georgemunganga/stockly-pos/internal/platform/config"
)

// Publisher is an outbox.Publisher that holds a connection.
type Publisher interface {
	outbox.Publisher
	io.Closer
}

// New returns the publisher selected by cfg.Broker.
func New(ctx context.Context, cfg config.Config) (Publisher, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return NewKafka(SplitBrokers(cfg.KafkaBrokers)), nil
	case config.BrokerAMQP:
		return DialAMQP(ctx, cfg.AMQPURL)
	case config.BrokerLog, "":
		return LogPublisher{}, nil
	}
	return nil, fmt.Errorf("unknown broker %q", cfg.Broker)
}

// SplitBrokers parses a comma-separated host list, dropping blanks.
func SplitBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
