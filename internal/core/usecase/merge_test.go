package usecase

import (
	"math/rand"
	"testing"

	"github.com/ferone/Germany-real-sate/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestMergeStats_UnweightedMean(t *testing.T) {
	partials := []domain.PartitionStats{
		{Count: 10, AvgPrice: fptr(100), PriceCount: 10, AvgSize: fptr(50), SizeCount: 10, AvgRooms: fptr(2), RoomsCount: 10},
		{Count: 1, AvgPrice: fptr(300), PriceCount: 1, AvgSize: fptr(150), SizeCount: 1, AvgRooms: fptr(4), RoomsCount: 1},
	}

	got := MergeStats(partials, false)

	assert.Equal(t, int64(11), got.Total)
	assert.Equal(t, 200.0, got.AvgPrice)
	assert.Equal(t, 100.0, got.AvgSize)
	assert.Equal(t, 3.0, got.AvgRooms)
}

func TestMergeStats_Weighted(t *testing.T) {
	partials := []domain.PartitionStats{
		{Count: 3, AvgPrice: fptr(100), PriceCount: 3},
		{Count: 1, AvgPrice: fptr(500), PriceCount: 1},
	}

	got := MergeStats(partials, true)

	assert.Equal(t, 200.0, got.AvgPrice)
}

func TestMergeStats_EmptyPartitionDoesNotMoveAverage(t *testing.T) {
	base := []domain.PartitionStats{
		{Count: 2, AvgPrice: fptr(100), PriceCount: 2},
		{Count: 2, AvgPrice: fptr(300), PriceCount: 2},
	}
	withEmpty := append([]domain.PartitionStats{{Count: 0}}, base...)
	withNullAvg := append([]domain.PartitionStats{{Count: 5}}, base...)

	want := MergeStats(base, false)

	assert.Equal(t, want.AvgPrice, MergeStats(withEmpty, false).AvgPrice)
	assert.Equal(t, want.AvgPrice, MergeStats(withNullAvg, false).AvgPrice)
	assert.Equal(t, want.Total+5, MergeStats(withNullAvg, false).Total)
}

func TestMergeStats_NoDataGivesZero(t *testing.T) {
	got := MergeStats([]domain.PartitionStats{{Count: 0}, {Count: 0}}, false)
	assert.Equal(t, domain.Stats{}, got)
}

func TestMergeStats_OrderIndependent(t *testing.T) {
	partials := []domain.PartitionStats{
		{Count: 7, AvgPrice: fptr(0.1), PriceCount: 7, AvgSize: fptr(33.3), SizeCount: 7},
		{Count: 3, AvgPrice: fptr(0.2), PriceCount: 3, AvgSize: fptr(71.7), SizeCount: 2},
		{Count: 9, AvgPrice: fptr(0.7), PriceCount: 8, AvgSize: fptr(12.9), SizeCount: 9},
		{Count: 0},
		{Count: 4, AvgPrice: fptr(1e6), PriceCount: 4},
	}
	want := MergeStats(partials, false)
	wantWeighted := MergeStats(partials, true)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.PartitionStats(nil), partials...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, want, MergeStats(shuffled, false))
		assert.Equal(t, wantWeighted, MergeStats(shuffled, true))
	}
}

func TestMergeTrend(t *testing.T) {
	partials := [][]domain.MonthlyAverage{
		{{Month: "2024-02", AvgPrice: fptr(200)}, {Month: "2024-01", AvgPrice: fptr(100)}},
		{{Month: "2024-02", AvgPrice: fptr(400)}, {Month: "2023-12", AvgPrice: nil}},
		{},
	}

	got := MergeTrend(partials)

	assert.Equal(t, []string{"2024-01", "2024-02"}, got.Labels)
	assert.Equal(t, []float64{100, 300}, got.Series)
}

func TestMergeTrend_Empty(t *testing.T) {
	got := MergeTrend(nil)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.Series)
}

func TestExtractCity(t *testing.T) {
	tests := map[string]string{
		"Berlin, Mitte, Torstraße 1": "Berlin",
		"  Hamburg ,Altona":          "Hamburg",
		"  München  ":                "München",
		", nowhere":                  "",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtractCity(in), in)
	}
}

func TestMergeCityCounts(t *testing.T) {
	partials := [][]domain.AddressCount{
		{
			{Address: sptr("Berlin, Mitte"), Count: 2},
			{Address: sptr("Berlin, Pankow"), Count: 1},
			{Address: sptr(", no city"), Count: 7},
			{Address: nil, Count: 4},
		},
		{
			{Address: sptr("Hamburg"), Count: 3},
			{Address: sptr(" Berlin "), Count: 1},
			{Address: sptr("Köln, Deutz"), Count: 3},
		},
	}

	got := MergeCityCounts(partials)

	assert.Equal(t, []string{"Berlin", "Hamburg", "Köln"}, got.Labels)
	assert.Equal(t, []int64{4, 3, 3}, got.Series)
}
