package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
	"github.com/ferone/Germany-real-sate/internal/core/port/usecases_port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
	HeaderTraceID      = "x-trace-id"
)

// EventValidator проверяет тело события по схеме
type EventValidator interface {
	ValidateEvent(eventType, eventVersion string, body []byte) error
}

// IngestObserver считает результаты приема: created|updated|invalid|failed
type IngestObserver interface {
	ObserveIngest(result string)
}

// ListingConsumerAdapter - входящий адаптер: слушает очередь со свежими объявлениями
// и сохраняет их через SaveListingUseCase
type ListingConsumerAdapter struct {
	consumer          *Consumer
	useCase           usecases_port.SaveListingUseCase
	validator         EventValidator
	observer          IngestObserver
	logger            port.LoggerPort
	extensionRegistry map[domain.ExtensionKind]ExtensionUnmarshaler
}

func NewListingConsumerAdapter(
	consumerCfg ConsumerConfig,
	useCase usecases_port.SaveListingUseCase,
	validator EventValidator,
	observer IngestObserver,
	logger port.LoggerPort,
	connManager *ConnectionManager,
) (*ListingConsumerAdapter, error) {
	adapter := newListingConsumerAdapter(useCase, validator, observer, logger)

	consumer, err := NewConsumer(consumerCfg, adapter.processMessage, connManager, adapter.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listings: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func newListingConsumerAdapter(
	useCase usecases_port.SaveListingUseCase,
	validator EventValidator,
	observer IngestObserver,
	logger port.LoggerPort,
) *ListingConsumerAdapter {
	if observer == nil {
		observer = noopIngestObserver{}
	}
	return &ListingConsumerAdapter{
		useCase:           useCase,
		validator:         validator,
		observer:          observer,
		logger:            logger.WithFields(port.Fields{"adapter_name": "ListingConsumerAdapter"}),
		extensionRegistry: newExtensionRegistry(),
	}
}

func (a *ListingConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting listings consumer", nil)
	return a.consumer.StartConsuming(ctx)
}

func (a *ListingConsumerAdapter) Close() error {
	a.logger.Info("Stopping listings consumer", nil)
	if a.consumer == nil {
		return nil
	}
	return a.consumer.Close()
}

// processMessage: невалидное сообщение - PermanentError, сбой хранилища - обычная ошибка
func (a *ListingConsumerAdapter) processMessage(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"delivery_tag": d.DeliveryTag,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	eventType, _ := d.Headers[HeaderEventType].(string)
	eventVersion, _ := d.Headers[HeaderEventVersion].(string)
	if err := a.validator.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Warn("Message failed schema validation. Rejecting.", port.Fields{"error": err.Error()})
		a.observer.ObserveIngest("invalid")
		return permanent(err)
	}

	var dto ListingScrapedEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		a.observer.ObserveIngest("invalid")
		return permanent(fmt.Errorf("failed to unmarshal listing event: %w", err))
	}

	listing, err := toDomainListing(&dto, a.extensionRegistry)
	if err != nil {
		msgLogger.Warn("Message could not be mapped to a listing. Rejecting.", port.Fields{"error": err.Error()})
		a.observer.ObserveIngest("invalid")
		return permanent(err)
	}

	outcome, err := a.useCase.Execute(ctx, listing)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			a.observer.ObserveIngest("invalid")
			return permanent(err)
		}
		a.observer.ObserveIngest("failed")
		return err
	}

	a.observer.ObserveIngest(string(outcome))
	msgLogger.Info("Listing saved", port.Fields{
		"external_id":   listing.Property.ExternalID,
		"property_type": listing.Property.PropertyType,
		"outcome":       outcome,
	})
	return nil
}

type noopIngestObserver struct{}

func (noopIngestObserver) ObserveIngest(string) {}

var _ port.EventListenerPort = (*ListingConsumerAdapter)(nil)
