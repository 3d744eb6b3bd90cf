package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fundlane/fundlane/pkg/log"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ContributionSettledEvent is published after a payment settles so that
// downstream consumers (notifications, analytics) can react asynchronously.
// The ledger does not depend on anyone consuming it.
type ContributionSettledEvent struct {
	TransactionID string          `json:"transaction_id"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	CampaignID    string          `json:"campaign_id"`
	Amount        decimal.Decimal `json:"amount"`
	FundingType   string          `json:"funding_type"`
	SettledAt     time.Time       `json:"settled_at"`
}

type Publisher interface {
	PublishContributionSettled(ctx context.Context, event ContributionSettledEvent) error
	Close()
}

type EventProducer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *zerolog.Logger
}

// NewEventProducer connects to the broker and declares a durable topic exchange.
func NewEventProducer(url, exchange string) (*EventProducer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	l := log.GetLogger()
	return &EventProducer{conn: conn, channel: channel, exchange: exchange, logger: &l}, nil
}

func (p *EventProducer) PublishContributionSettled(ctx context.Context, event ContributionSettledEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, "contribution.settled", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", event.OrderID).Msg("failed to publish contribution event")
		return err
	}

	return nil
}

func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopProducer is used when the broker is unreachable at startup. Settlement
// must not depend on messaging being up.
type NoopProducer struct{}

func (NoopProducer) PublishContributionSettled(ctx context.Context, event ContributionSettledEvent) error {
	logger := log.GetLogger()
	logger.Warn().Str("order_id", event.OrderID).Msg("event broker unavailable, contribution event dropped")
	return nil
}

func (NoopProducer) Close() {}

// Connect returns a broker-backed producer, or a NoopProducer when no URL is
// configured or the broker cannot be reached.
func Connect(url, exchange string) Publisher {
	logger := log.GetLogger()
	if url == "" {
		logger.Warn().Msg("no AMQP url configured, settlement events disabled")
		return NoopProducer{}
	}

	producer, err := NewEventProducer(url, exchange)
	if err != nil {
		logger.Warn().Err(err).Msg("event broker unreachable, settlement events disabled")
		return NoopProducer{}
	}
	return producer
}
