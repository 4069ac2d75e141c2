package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ferone/Germany-real-sate/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig - очередь, ее привязка к обменнику и QoS
type ConsumerConfig struct {
	QueueName    string
	DurableQueue bool

	ExchangeName string // пусто - без привязки
	ExchangeType string
	RoutingKey   string

	PrefetchCount int
	ConsumerTag   string
}

func (c ConsumerConfig) Validate() error {
	if c.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	if c.ExchangeName != "" && c.ExchangeType == "" {
		return fmt.Errorf("exchange type is required when binding to exchange %q", c.ExchangeName)
	}
	return nil
}

// MessageHandler обрабатывает одно сообщение. Ack/Nack решает Consumer по ошибке:
// nil - ack, PermanentError - nack без requeue, остальное - nack с requeue.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// PermanentError - сообщение никогда не будет обработано, повторять бессмысленно
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func permanent(err error) error {
	return &PermanentError{Err: err}
}

// acknowledgement - итог обработки для брокера
type acknowledgement int

const (
	ackMessage acknowledgement = iota
	nackDrop
	nackRequeue
)

func classify(err error) acknowledgement {
	if err == nil {
		return ackMessage
	}
	var pErr *PermanentError
	if errors.As(err, &pErr) {
		return nackDrop
	}
	return nackRequeue
}

type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	handler    MessageHandler
	logger     port.LoggerPort
	wg         sync.WaitGroup
	// loopDone закрывается, когда цикл чтения доставок вышел и больше не вызывает wg.Add
	loopDone chan struct{}
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *ConnectionManager, logger port.LoggerPort) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: invalid config: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		logger:     logger.WithFields(port.Fields{"component": "RabbitMQConsumer", "queue": cfg.QueueName}),
	}

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}
	return c, nil
}

// setup объявляет очередь, обменник и привязку
func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if _, err := c.channel.QueueDeclare(c.config.QueueName, c.config.DurableQueue, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
	}

	if c.config.ExchangeName == "" {
		return nil
	}

	c.logger.Debug("Declaring exchange", port.Fields{"exchange": c.config.ExchangeName, "type": c.config.ExchangeType})
	if err := c.channel.ExchangeDeclare(c.config.ExchangeName, c.config.ExchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", c.config.ExchangeName, err)
	}

	c.logger.Debug("Binding queue to exchange", port.Fields{"exchange": c.config.ExchangeName, "routing_key": c.config.RoutingKey})
	if err := c.channel.QueueBind(c.config.QueueName, c.config.RoutingKey, c.config.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.config.QueueName, c.config.ExchangeName, err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения брокером
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to register on queue '%s': %w", c.config.QueueName, err)
	}

	c.logger.Info("Waiting for messages", nil)

	c.loopDone = make(chan struct{})
	go c.consumeLoop(ctx, msgs, c.loopDone)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.logger.Info("Context cancelled, shutting down consumer", nil)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return nil
		}
		c.logger.Error("Connection closed for consumer", amqpErr, nil)
		return amqpErr
	}
}

// consumeLoop раздает доставки обработчикам, пока ctx не отменен
func (c *Consumer) consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.logger.Info("Deliveries channel closed by RabbitMQ", nil)
				return
			}
			// select мог выбрать доставку уже после отмены: без ack брокер вернет ее в очередь
			if ctx.Err() != nil {
				return
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				// Начатое сообщение дорабатывается даже после остановки
				c.dispatch(context.WithoutCancel(ctx), delivery)
			}(d)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, delivery amqp.Delivery) {
	fields := port.Fields{"delivery_tag": delivery.DeliveryTag}
	err := c.handler(ctx, delivery)

	switch classify(err) {
	case ackMessage:
		_ = delivery.Ack(false)
	case nackDrop:
		c.logger.Warn("Message rejected without requeue", port.Fields{"delivery_tag": delivery.DeliveryTag, "error": err.Error()})
		_ = delivery.Nack(false, false)
	case nackRequeue:
		c.logger.Error("Handler failed, requeueing message", err, fields)
		_ = delivery.Nack(false, true)
	}
}

// Close дожидается цикла чтения и обработчиков, затем закрывает канал.
// Соединение принадлежит ConnectionManager. Вызывается после отмены ctx, переданного в StartConsuming.
func (c *Consumer) Close() error {
	if c.loopDone != nil {
		<-c.loopDone
	}
	c.wg.Wait()
	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	return err
}
