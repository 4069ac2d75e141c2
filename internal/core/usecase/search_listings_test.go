package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ferone/Germany-real-sate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func searchFixture(t *testing.T) *SearchListingsUseCase {
	t.Helper()
	store := seedStore(t,
		domain.Property{ExternalID: "a1", PropertyType: domain.ApartmentRent, Price: fptr(900), Address: sptr("Berlin, Mitte")},
		domain.Property{ExternalID: "a2", PropertyType: domain.ApartmentRent, Price: fptr(1500), Address: sptr("Hamburg")},
		domain.Property{ExternalID: "l1", PropertyType: domain.Land, Price: fptr(150), Address: sptr("Brandenburg, Berlin-Umland")},
		domain.Property{ExternalID: "l2", PropertyType: domain.Land, Address: sptr("Dresden")},
		domain.Property{ExternalID: "p1", PropertyType: domain.Parking, Price: fptr(100), Size: fptr(12)},
	)
	return NewSearchListingsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)
}

func externalIDs(rows []domain.ListingRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ExternalID)
	}
	return ids
}

func TestSearchListings_SingleType(t *testing.T) {
	uc := searchFixture(t)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{Type: "land"}, domain.Page{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"l1", "l2"}, externalIDs(result.Listings))
	for _, row := range result.Listings {
		assert.Equal(t, domain.Land, row.PropertyType)
	}
	assert.Nil(t, result.Listings[1].Price, "null price stays null")
}

func TestSearchListings_AllTypesInRegistryOrder(t *testing.T) {
	uc := searchFixture(t)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{}, domain.Page{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "l1", "l2", "p1"}, externalIDs(result.Listings))
	assert.Equal(t, 5, result.Total)
}

func TestSearchListings_Filters(t *testing.T) {
	uc := searchFixture(t)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{
		City:     "berlin",
		MinPrice: fptr(150),
		MaxPrice: fptr(900),
	}, domain.Page{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "l1"}, externalIDs(result.Listings))
}

func TestSearchListings_UnknownTypeFallsBack(t *testing.T) {
	store := seedStore(t,
		domain.Property{ExternalID: "a1", PropertyType: domain.ApartmentBuy},
		domain.Property{ExternalID: "p1", PropertyType: domain.Parking},
	)
	metrics := newRecordingMetrics()
	uc := NewSearchListingsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), metrics)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{Type: "castle"}, domain.Page{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, metrics.fallbacks)
}

func TestSearchListings_Paging(t *testing.T) {
	uc := searchFixture(t)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{}, domain.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, []string{"a2", "l1"}, externalIDs(result.Listings))

	result, err = uc.Execute(context.Background(), domain.SearchFilters{}, domain.Page{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	assert.Equal(t, 5, result.Total)
}

func TestSearchListings_FailFast(t *testing.T) {
	store := new(MockPartitionStore)
	store.On("FindListings", mock.Anything, partitionIs(domain.CommercialRent), mock.Anything).
		Return([]domain.ListingRow(nil), errors.New("timeout"))
	store.On("FindListings", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.ListingRow{{ExternalID: "x"}}, nil).Maybe()

	uc := NewSearchListingsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{}, domain.Page{})

	assert.Nil(t, result)
	var pqErr *domain.PartitionQueryError
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, domain.CommercialRent, pqErr.Partition)
}

func TestSearchListings_NumericRoundTrip(t *testing.T) {
	store := seedStore(t, domain.Property{
		ExternalID:   "h1",
		PropertyType: domain.HouseBuy,
		Price:        fptr(250000),
		Size:         fptr(80),
		Rooms:        fptr(3),
	})
	uc := NewSearchListingsUseCase(store, NewFanOutExecutor(FanOutConfig{}, nil), nil)

	result, err := uc.Execute(context.Background(), domain.SearchFilters{Type: "house-buy"}, domain.Page{})
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)

	row := result.Listings[0]
	require.NotNil(t, row.Price)
	require.NotNil(t, row.Size)
	require.NotNil(t, row.Rooms)
	assert.Equal(t, 250000.0, *row.Price)
	assert.Equal(t, 80.0, *row.Size)
	assert.Equal(t, 3.0, *row.Rooms)
}
