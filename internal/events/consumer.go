package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// Refresher reloads one slice of the back-office state.
type Refresher interface {
	Refresh(ctx context.Context, slice store.Slice) error
}

// EntityEvent is the envelope emitted by the membership, product and order
// services. Only the type is needed to pick the slice to reload.
type EntityEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

var entitySlices = map[string]store.Slice{
	"order":   store.SliceOrders,
	"product": store.SliceProducts,
	"user":    store.SliceUsers,
}

// SliceForEventType maps "order.*", "product.*" and "user.*" to their slice.
func SliceForEventType(eventType string) (store.Slice, bool) {
	entity, _, found := strings.Cut(eventType, ".")
	if !found {
		return "", false
	}
	slice, ok := entitySlices[entity]
	return slice, ok
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer refreshes state slices when backend entities change.
type KafkaConsumer struct {
	reader     messageReader
	refresher  Refresher
	logger     *logging.LoggerV2
	retryDelay time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// readRetryDelay is the pause after a failed read before the next attempt.
const readRetryDelay = time.Second

// NewKafkaConsumer creates a consumer over every configured entity topic.
func NewKafkaConsumer(cfg config.KafkaConfig, refresher Refresher, logger *logging.LoggerV2) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		GroupTopics: cfg.EntityTopics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})

	return newKafkaConsumer(reader, refresher, logger)
}

func newKafkaConsumer(reader messageReader, refresher Refresher, logger *logging.LoggerV2) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		refresher:  refresher,
		logger:     logger,
		retryDelay: readRetryDelay,
		stopCh:     make(chan struct{}),
	}
}

// Start consumes until ctx ends or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				case <-time.After(c.retryDelay):
				}
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer. It is safe to call more than once.
func (c *KafkaConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.reader.Close()
	})
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	eventType := headerValue(msg, "event_type")
	if eventType == "" {
		var event EntityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			metrics.EventsConsumed.WithLabelValues("unknown", "invalid").Inc()
			c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
			return
		}
		eventType = event.Type
	}

	if strings.HasPrefix(eventType, eventTypePrefix) {
		metrics.EventsConsumed.WithLabelValues("backoffice", "ignored").Inc()
		return
	}

	slice, ok := SliceForEventType(eventType)
	if !ok {
		metrics.EventsConsumed.WithLabelValues("unknown", "ignored").Inc()
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": eventType})
		return
	}

	if err := c.refresher.Refresh(ctx, slice); err != nil {
		metrics.EventsConsumed.WithLabelValues(string(slice), "failed").Inc()
		c.logger.Error("Failed to refresh slice", logging.Fields{
			"slice":      slice,
			"event_type": eventType,
			"error":      err.Error(),
		})
		return
	}

	metrics.EventsConsumed.WithLabelValues(string(slice), "refreshed").Inc()
	c.logger.Info("Slice refreshed from event", logging.Fields{
		"slice":      slice,
		"event_type": eventType,
	})
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
