// Package eventstreamutils selects an eventstream.Publisher from configuration.
package eventstreamutils

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/eventstream/kafka"
	"github.com/papercomputeco/bridge/pkg/eventstream/nop"
	"github.com/papercomputeco/bridge/pkg/eventstream/redisstream"
)

const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
	ProviderRedis = "redis"
)

type NewPublisherOpts struct {
	// Provider is one of "none", "kafka" or "redis". Empty means "none".
	Provider string

	// Brokers is a comma-separated Kafka bootstrap list.
	Brokers string
	Topic   string

	RedisAddr string
	Stream    string
	MaxLen    uint

	Logger *zap.Logger
}

func NewPublisher(ctx context.Context, o *NewPublisherOpts) (eventstream.Publisher, error) {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch o.Provider {
	case "", ProviderNone:
		return nop.NewPublisher(), nil

	case ProviderKafka:
		brokers := SplitBrokers(o.Brokers)
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   o.Topic,
		})
		if err != nil {
			return nil, err
		}
		log.Info("publishing sessions to kafka",
			zap.Strings("brokers", brokers),
			zap.String("topic", o.Topic),
		)
		return p, nil

	case ProviderRedis:
		p, err := redisstream.NewPublisher(ctx, redisstream.Config{
			Addr:   o.RedisAddr,
			Stream: o.Stream,
			MaxLen: int64(o.MaxLen),
		})
		if err != nil {
			return nil, err
		}
		log.Info("publishing sessions to redis stream",
			zap.String("addr", o.RedisAddr),
			zap.String("stream", o.Stream),
		)
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.Provider)
	}
}

// SplitBrokers splits a comma-separated broker list, dropping blanks.
func SplitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
