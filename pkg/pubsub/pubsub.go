package pubsub

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher publishes domain events. Events are informational, callers log
// publish failures instead of failing their own transaction.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) error
	Close() error
}

type amqpPublisher struct {
	logger   *logrus.Logger
	conn     *amqp.Connection
	exchange string
}

// PublisherFromAMQPConnection wraps an AMQP connection as a Publisher. The
// topic becomes the routing key on a durable topic exchange.
func PublisherFromAMQPConnection(logger *logrus.Logger, conn *amqp.Connection, exchange string) Publisher {
	return &amqpPublisher{
		logger:   logger,
		conn:     conn,
		exchange: exchange,
	}
}

func (p *amqpPublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return err
	}

	table := amqp.Table{}
	for k, v := range headers {
		table[k] = v
	}

	err = ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    key,
		Headers:      table,
		Body:         message,
	})
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return err
	}

	return nil
}

func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}
