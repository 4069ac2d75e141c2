package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferone/Germany-real-sate/internal/adapters/memory"
	"github.com/ferone/Germany-real-sate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, listings ...domain.Property) *memory.PartitionStore {
	t.Helper()
	store := memory.NewPartitionStore()
	for _, p := range listings {
		_, err := store.Upsert(context.Background(), domain.Listing{Property: p})
		require.NoError(t, err)
	}
	return store
}

func TestGetStatsUseCase(t *testing.T) {
	store := seedStore(t,
		domain.Property{ExternalID: "a1", PropertyType: domain.ApartmentRent, Price: fptr(1000), Size: fptr(50), Rooms: fptr(2)},
		domain.Property{ExternalID: "a2", PropertyType: domain.ApartmentRent, Price: fptr(2000), Size: fptr(70), Rooms: fptr(3)},
		domain.Property{ExternalID: "l1", PropertyType: domain.Land, Price: fptr(90000), Size: fptr(1000)},
	)
	uc := NewGetStatsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil, false)

	stats, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, (1500.0+90000.0)/2, stats.AvgPrice)
	assert.Equal(t, (60.0+1000.0)/2, stats.AvgSize)
	assert.Equal(t, 2.5, stats.AvgRooms)
}

func TestGetStatsUseCase_UsesCache(t *testing.T) {
	store := new(MockPartitionStore)
	store.On("PartitionStats", mock.Anything, mock.Anything).Return(domain.PartitionStats{Count: 2, AvgPrice: fptr(10), PriceCount: 2}, nil)

	cache := newMapCache()
	uc := NewGetStatsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), NewResultCache(cache, time.Minute), false)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	second, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	store.AssertNumberOfCalls(t, "PartitionStats", 8)
}

func TestGetStatsUseCase_PartitionFailure(t *testing.T) {
	store := new(MockPartitionStore)
	store.On("PartitionStats", mock.Anything, partitionIs(domain.HouseBuy)).Return(domain.PartitionStats{}, errors.New("connection reset"))
	store.On("PartitionStats", mock.Anything, mock.Anything).Return(domain.PartitionStats{}, nil).Maybe()

	cache := newMapCache()
	uc := NewGetStatsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), NewResultCache(cache, time.Minute), false)

	stats, err := uc.Execute(context.Background())

	assert.Nil(t, stats)
	var pqErr *domain.PartitionQueryError
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, domain.HouseBuy, pqErr.Partition)
	assert.Zero(t, cache.sets, "failures are not cached")
}

func TestGetPriceTrendUseCase(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := seedStore(t,
		domain.Property{ExternalID: "old", PropertyType: domain.HouseBuy, Price: fptr(1), CreatedAt: now.AddDate(-2, 0, 0)},
		domain.Property{ExternalID: "h1", PropertyType: domain.HouseBuy, Price: fptr(300000), CreatedAt: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		domain.Property{ExternalID: "a1", PropertyType: domain.ApartmentRent, Price: fptr(1000), CreatedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		domain.Property{ExternalID: "a2", PropertyType: domain.ApartmentRent, Price: fptr(1200), CreatedAt: time.Date(2023, 12, 9, 0, 0, 0, 0, time.UTC)},
	)
	uc := NewGetPriceTrendUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil, 12)
	uc.now = func() time.Time { return now }

	chart, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-12", "2024-03"}, chart.Labels)
	assert.Equal(t, []float64{1200, (300000.0 + 1000.0) / 2}, chart.Series)
}

func TestGetCityDistributionUseCase(t *testing.T) {
	store := seedStore(t,
		domain.Property{ExternalID: "1", PropertyType: domain.ApartmentRent, Address: sptr("Berlin, Mitte")},
		domain.Property{ExternalID: "2", PropertyType: domain.HouseBuy, Address: sptr("Berlin, Spandau")},
		domain.Property{ExternalID: "3", PropertyType: domain.Parking, Address: sptr("Leipzig")},
		domain.Property{ExternalID: "4", PropertyType: domain.Parking},
	)
	uc := NewGetCityDistributionUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)

	chart, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Berlin", "Leipzig"}, chart.Labels)
	assert.Equal(t, []int64{2, 1}, chart.Series)
}

func TestGetTypeDistributionUseCase(t *testing.T) {
	store := seedStore(t,
		domain.Property{ExternalID: "1", PropertyType: domain.Land},
		domain.Property{ExternalID: "2", PropertyType: domain.Land},
		domain.Property{ExternalID: "3", PropertyType: domain.ApartmentRent},
	)
	uc := NewGetTypeDistributionUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)

	chart, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Apartment Rent", "Apartment Buy", "Commercial Rent", "Commercial Buy",
		"House Rent", "House Buy", "Land", "Parking",
	}, chart.Labels)
	assert.Equal(t, []int64{1, 0, 0, 0, 0, 0, 2, 0}, chart.Series)
}

func TestGetAvgPriceByTypeUseCase_NullAverageIsZero(t *testing.T) {
	store := seedStore(t,
		domain.Property{ExternalID: "1", PropertyType: domain.CommercialBuy, Price: fptr(100)},
		domain.Property{ExternalID: "2", PropertyType: domain.CommercialBuy, Price: fptr(200)},
		domain.Property{ExternalID: "3", PropertyType: domain.Parking},
	)
	uc := NewGetAvgPriceByTypeUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)

	chart, err := uc.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, chart.Series, 8)
	assert.Equal(t, 150.0, chart.Series[3])
	assert.Equal(t, 0.0, chart.Series[7])
}
