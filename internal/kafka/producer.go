package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Producer publishes valuation events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishValuation publishes a completed valuation for one ticker.
// Error results carry no numbers worth publishing and are skipped.
func (p *Producer) PublishValuation(ctx context.Context, result *models.ValuationResult) error {
	if result.Status == models.StatusError {
		return nil
	}

	event := models.ValuationEvent{
		EventType:       models.EventValuationCompleted,
		Ticker:          result.Ticker,
		FairValue:       decimal.NewFromFloat(result.FairValue).Round(2),
		CurrentPrice:    decimal.NewFromFloat(result.CurrentPrice).Round(2),
		PriceDifference: decimal.NewFromFloat(result.PriceDifference).Round(2),
		BookValue:       decimal.NewFromFloat(result.BookValue).Round(2),
		Status:          result.Status,
		Synthetic:       result.Synthetic,
		Timestamp:       time.Now(),
	}
	return p.publish(ctx, result.Ticker, event)
}

// PublishRunCompleted publishes a summary event for a finished batch run
func (p *Producer) PublishRunCompleted(ctx context.Context, results []*models.ValuationResult, elapsed time.Duration) error {
	event := models.RunEvent{
		EventType:   models.EventRunCompleted,
		TickerCount: len(results),
		Elapsed:     elapsed.Round(time.Millisecond).String(),
		Timestamp:   time.Now(),
	}
	for _, result := range results {
		switch result.Status {
		case models.StatusUnderpriced:
			event.UnderpricedCount++
		case models.StatusOverpriced:
			event.OverpricedCount++
		case models.StatusError:
			event.ErrorCount++
		}
	}
	return p.publish(ctx, "run", event)
}

func (p *Producer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
