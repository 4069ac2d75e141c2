package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferone/Germany-real-sate/internal/adapters/memory"
	"github.com/ferone/Germany-real-sate/internal/contracts"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
	"github.com/ferone/Germany-real-sate/internal/core/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (l nopLogger) WithFields(port.Fields) port.LoggerPort { return l }

type countingObserver map[string]int

func (o countingObserver) ObserveIngest(result string) { o[result]++ }

type failingSink struct{}

func (failingSink) Upsert(context.Context, domain.Listing) (domain.SaveOutcome, error) {
	return "", errors.New("connection reset by peer")
}

const validBody = `{
	"external_id": "is24-77",
	"property_type": "house-buy",
	"title": "Einfamilienhaus",
	"address": "Potsdam, Babelsberg",
	"city": "Potsdam",
	"price": 550000,
	"rooms": 5,
	"location": {"lat": 52.39, "lon": 13.06},
	"scraped_at": "2024-06-01T08:30:00Z",
	"extension": {"kind": "residential", "garden": true, "parking_spaces": 2}
}`

func delivery(body string) amqp.Delivery {
	return amqp.Delivery{
		Headers: amqp.Table{
			HeaderEventType:    "ListingScrapedEvent",
			HeaderEventVersion: "1.0.0",
		},
		Body: []byte(body),
	}
}

func newTestAdapter(t *testing.T, sink port.ListingSinkPort) (*ListingConsumerAdapter, countingObserver) {
	t.Helper()
	registry, err := contracts.NewRegistry()
	require.NoError(t, err)

	obs := countingObserver{}
	return newListingConsumerAdapter(usecase.NewSaveListingUseCase(sink), registry, obs, nopLogger{}), obs
}

func TestProcessMessage_SavesListing(t *testing.T) {
	store := memory.NewPartitionStore()
	adapter, obs := newTestAdapter(t, store)

	require.NoError(t, adapter.processMessage(context.Background(), delivery(validBody)))
	require.NoError(t, adapter.processMessage(context.Background(), delivery(validBody)))

	assert.Equal(t, countingObserver{"created": 1, "updated": 1}, obs)

	p, _ := domain.Lookup(domain.HouseBuy)
	got, err := store.GetListing(context.Background(), p, "is24-77")
	require.NoError(t, err)
	assert.Equal(t, 550000.0, *got.Property.Price)
	assert.Equal(t, 52.39, got.Property.Location.Lat())
	assert.Equal(t, "2024-06-01", got.Property.CreatedAt.Format("2006-01-02"))

	res, ok := got.Extension.(*domain.Residential)
	require.True(t, ok)
	assert.True(t, *res.Garden)
	assert.Equal(t, 2, *res.ParkingSpaces)
}

func TestProcessMessage_InvalidIsPermanent(t *testing.T) {
	adapter, obs := newTestAdapter(t, memory.NewPartitionStore())

	err := adapter.processMessage(context.Background(), delivery(`{"external_id":"x"}`))
	require.Error(t, err)
	assert.Equal(t, nackDrop, classify(err))

	d := delivery(validBody)
	d.Headers[HeaderEventVersion] = "2.0.0"
	err = adapter.processMessage(context.Background(), d)
	assert.Equal(t, nackDrop, classify(err))

	assert.Equal(t, 2, obs["invalid"])
}

func TestProcessMessage_ExtensionKindMismatchIsPermanent(t *testing.T) {
	adapter, _ := newTestAdapter(t, memory.NewPartitionStore())

	body := `{"external_id":"p1","property_type":"parking","title":"Stellplatz","address":"Berlin","city":"Berlin",
		"extension":{"kind":"land","plot_size":12}}`
	err := adapter.processMessage(context.Background(), delivery(body))

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, nackDrop, classify(err))
}

func TestProcessMessage_StoreFailureIsRequeued(t *testing.T) {
	adapter, obs := newTestAdapter(t, failingSink{})

	err := adapter.processMessage(context.Background(), delivery(validBody))
	require.Error(t, err)
	assert.Equal(t, nackRequeue, classify(err))
	assert.Equal(t, 1, obs["failed"])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ackMessage, classify(nil))
	assert.Equal(t, nackRequeue, classify(errors.New("timeout")))
	assert.Equal(t, nackDrop, classify(permanent(errors.New("bad"))))
}

func TestToDomainListing_NoExtension(t *testing.T) {
	title := "Tiefgarage"
	listing, err := toDomainListing(&ListingScrapedEventDTO{
		ExternalID: "p2", PropertyType: "parkplatz_miete", Title: &title, Extension: []byte("null"),
	}, newExtensionRegistry())
	require.NoError(t, err)

	assert.Equal(t, domain.Parking, listing.Property.PropertyType)
	assert.Nil(t, listing.Extension)
	assert.True(t, listing.Property.CreatedAt.IsZero())
}

func TestConsumerConfig_Validate(t *testing.T) {
	assert.Error(t, ConsumerConfig{}.Validate())
	assert.Error(t, ConsumerConfig{QueueName: "q", ExchangeName: "x"}.Validate())
	assert.NoError(t, ConsumerConfig{QueueName: "q", ExchangeName: "x", ExchangeType: "direct"}.Validate())
}

func TestConsumer_CloseWaitsForLoopAndHandlers(t *testing.T) {
	handled := make(chan string, 4)
	started := make(chan struct{})
	release := make(chan struct{})
	c := &Consumer{
		logger: nopLogger{},
		handler: func(_ context.Context, d amqp.Delivery) error {
			close(started)
			<-release
			handled <- d.MessageId
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan amqp.Delivery)
	c.loopDone = make(chan struct{})
	go c.consumeLoop(ctx, msgs, c.loopDone)

	msgs <- amqp.Delivery{MessageId: "m1"}
	<-started
	cancel()

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned before the in-flight handler finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, "m1", <-handled)
	assert.Empty(t, handled)
}

func TestConsumer_LoopStopsAfterCancel(t *testing.T) {
	var calls int
	c := &Consumer{
		logger: nopLogger{},
		handler: func(context.Context, amqp.Delivery) error {
			calls++
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// буферизованная доставка уже лежит в канале в момент отмены
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{MessageId: "late"}
	c.loopDone = make(chan struct{})
	go c.consumeLoop(ctx, msgs, c.loopDone)

	require.NoError(t, c.Close())
	assert.Zero(t, calls)
}
