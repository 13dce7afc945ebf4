package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// WatchlistRepository defines the watchlist store operations the
// consumer needs
type WatchlistRepository interface {
	UpsertWatchlistEntry(e *models.WatchlistEntry) error
	DeleteWatchlistEntry(symbol string) error
}

// Consumer keeps the watchlist store in sync with upstream tooling by
// consuming watchlist events from Kafka.
type Consumer struct {
	reader *kafka.Reader
	repo   WatchlistRepository
	log    *logrus.Logger
}

// NewConsumer creates a new Kafka consumer for watchlist events
func NewConsumer(brokers []string, topic, groupID string, repo WatchlistRepository, log *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Consumer{
		reader: reader,
		repo:   repo,
		log:    log,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	c.log.WithField("topic", c.reader.Config().Topic).Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.log.WithError(err).Error("Error reading message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.log.WithError(err).Error("Error processing message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	c.log.WithFields(logrus.Fields{
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"key":       string(msg.Key),
	}).Debug("Received message")

	var event models.WatchlistEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal watchlist event: %w", err)
	}

	if event.Symbol == "" {
		return fmt.Errorf("watchlist event has no symbol")
	}

	switch event.EventType {
	case models.EventWatchlistAdded:
		entry := &models.WatchlistEntry{
			Symbol:   event.Symbol,
			Enabled:  true,
			Priority: event.Priority,
			Note:     event.Note,
		}
		if err := c.repo.UpsertWatchlistEntry(entry); err != nil {
			return fmt.Errorf("failed to add watchlist entry: %w", err)
		}
		c.log.WithField("symbol", event.Symbol).Info("Added ticker to watchlist")

	case models.EventWatchlistRemoved:
		if err := c.repo.DeleteWatchlistEntry(event.Symbol); err != nil {
			return fmt.Errorf("failed to remove watchlist entry: %w", err)
		}
		c.log.WithField("symbol", event.Symbol).Info("Removed ticker from watchlist")

	default:
		c.log.WithField("event_type", event.EventType).Debug("Ignoring event type")
	}

	return nil
}
