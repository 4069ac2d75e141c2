package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func landPartition(t *testing.T) domain.Partition {
	t.Helper()
	p, ok := domain.Lookup(domain.Land)
	require.True(t, ok)
	return p
}

func TestPartitionStore_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewPartitionStore()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	outcome, err := store.Upsert(ctx, domain.Listing{Property: domain.Property{
		ExternalID: "L-1", PropertyType: domain.Land, Price: fptr(1000), CreatedAt: created,
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.SaveCreated, outcome)

	outcome, err = store.Upsert(ctx, domain.Listing{Property: domain.Property{
		ExternalID: "L-1", PropertyType: domain.Land, Price: fptr(1200),
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.SaveUpdated, outcome)

	got, err := store.GetListing(ctx, landPartition(t), "L-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Property.ID)
	assert.Equal(t, created, got.Property.CreatedAt)
	assert.Equal(t, 1200.0, *got.Property.Price)
}

func TestPartitionStore_StatsSkipNulls(t *testing.T) {
	ctx := context.Background()
	store := NewPartitionStore()

	_, err := store.Upsert(ctx, domain.Listing{Property: domain.Property{ExternalID: "a", PropertyType: domain.Land, Price: fptr(100)}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, domain.Listing{Property: domain.Property{ExternalID: "b", PropertyType: domain.Land, Price: fptr(300)}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, domain.Listing{Property: domain.Property{ExternalID: "c", PropertyType: domain.Land}})
	require.NoError(t, err)

	stats, err := store.PartitionStats(ctx, landPartition(t))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Count)
	require.NotNil(t, stats.AvgPrice)
	assert.Equal(t, 200.0, *stats.AvgPrice)
	assert.Equal(t, int64(2), stats.PriceCount)
	assert.Nil(t, stats.AvgSize)
}

func TestPartitionStore_FindListingsKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	store := NewPartitionStore()
	for _, id := range []string{"z", "a", "m"} {
		_, err := store.Upsert(ctx, domain.Listing{Property: domain.Property{
			ExternalID: id, PropertyType: domain.Land, Address: sptr("Berlin, Mitte"),
		}})
		require.NoError(t, err)
	}

	rows, err := store.FindListings(ctx, landPartition(t), domain.Predicate{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "z", rows[0].ExternalID)
	assert.Equal(t, "a", rows[1].ExternalID)
	assert.Equal(t, "m", rows[2].ExternalID)
}

func TestPartitionStore_MonthlyAveragePrice(t *testing.T) {
	ctx := context.Background()
	store := NewPartitionStore()
	seed := []struct {
		id      string
		price   *float64
		created time.Time
	}{
		{"old", fptr(999), time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"jan-1", fptr(100), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"jan-2", fptr(300), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
		{"feb-null", nil, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, s := range seed {
		_, err := store.Upsert(ctx, domain.Listing{Property: domain.Property{
			ExternalID: s.id, PropertyType: domain.Land, Price: s.price, CreatedAt: s.created,
		}})
		require.NoError(t, err)
	}

	got, err := store.MonthlyAveragePrice(ctx, landPartition(t), time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-01", got[0].Month)
	assert.Equal(t, 200.0, *got[0].AvgPrice)
	assert.Equal(t, "2024-02", got[1].Month)
	assert.Nil(t, got[1].AvgPrice)
}

func TestPartitionStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPartitionStore().PartitionStats(ctx, landPartition(t))
	assert.ErrorIs(t, err, context.Canceled)
}
