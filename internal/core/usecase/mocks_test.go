package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockPartitionStore struct {
	mock.Mock
}

func (m *MockPartitionStore) PartitionStats(ctx context.Context, p domain.Partition) (domain.PartitionStats, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.PartitionStats), args.Error(1)
}

func (m *MockPartitionStore) MonthlyAveragePrice(ctx context.Context, p domain.Partition, since time.Time) ([]domain.MonthlyAverage, error) {
	args := m.Called(ctx, p, since)
	return args.Get(0).([]domain.MonthlyAverage), args.Error(1)
}

func (m *MockPartitionStore) AddressCounts(ctx context.Context, p domain.Partition) ([]domain.AddressCount, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.AddressCount), args.Error(1)
}

func (m *MockPartitionStore) FindListings(ctx context.Context, p domain.Partition, pred domain.Predicate) ([]domain.ListingRow, error) {
	args := m.Called(ctx, p, pred)
	return args.Get(0).([]domain.ListingRow), args.Error(1)
}

func (m *MockPartitionStore) GetListing(ctx context.Context, p domain.Partition, externalID string) (*domain.Listing, error) {
	args := m.Called(ctx, p, externalID)
	listing, _ := args.Get(0).(*domain.Listing)
	return listing, args.Error(1)
}

func partitionIs(t domain.PropertyType) interface{} {
	return mock.MatchedBy(func(p domain.Partition) bool { return p.Type == t })
}

// recordingMetrics запоминает вызовы движка
type recordingMetrics struct {
	mu        sync.Mutex
	queries   map[string]int
	fallbacks int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{queries: make(map[string]int)}
}

func (r *recordingMetrics) ObservePartitionQuery(partition, op string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[op]++
}

func (r *recordingMetrics) PartitionFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}

func (r *recordingMetrics) ObserveCache(string) {}

// mapCache - кэш на map с JSON-сериализацией, как у redis-адаптера
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	c.sets++
	return nil
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

// recordingLogger запоминает тексты сообщений
type recordingLogger struct {
	mu       *sync.Mutex
	messages *[]string
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, messages: &[]string{}}
}

func (l recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.messages = append(*l.messages, msg)
}

func (l recordingLogger) Info(msg string, _ port.Fields)           { l.record(msg) }
func (l recordingLogger) Warn(msg string, _ port.Fields)           { l.record(msg) }
func (l recordingLogger) Error(msg string, _ error, _ port.Fields) { l.record(msg) }
func (l recordingLogger) Debug(msg string, _ port.Fields)          { l.record(msg) }
func (l recordingLogger) WithFields(port.Fields) port.LoggerPort   { return l }
