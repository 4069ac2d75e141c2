package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type table struct {
	rows       []domain.Listing
	byExternal map[string]int
	nextID     int64
}

// PartitionStore - хранилище партиций в памяти. Семантика запросов совпадает с postgres-адаптером:
// средние без учета NULL, фильтр через domain.Predicate, порядок строк - порядок вставки.
type PartitionStore struct {
	mu     sync.RWMutex
	tables map[domain.PropertyType]*table
	now    func() time.Time
}

func NewPartitionStore() *PartitionStore {
	s := &PartitionStore{
		tables: make(map[domain.PropertyType]*table),
		now:    time.Now,
	}
	for _, p := range domain.Partitions() {
		s.tables[p.Type] = &table{byExternal: make(map[string]int), nextID: 1}
	}
	return s
}

// Upsert создает или обновляет объявление. При обновлении сохраняются ID и created_at.
func (s *PartitionStore) Upsert(ctx context.Context, listing domain.Listing) (domain.SaveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := listing.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[listing.Property.PropertyType]
	now := s.now().UTC()

	if idx, ok := t.byExternal[listing.Property.ExternalID]; ok {
		existing := t.rows[idx].Property
		listing.Property.ID = existing.ID
		listing.Property.CreatedAt = existing.CreatedAt
		listing.Property.UpdatedAt = now
		t.rows[idx] = listing
		return domain.SaveUpdated, nil
	}

	listing.Property.ID = t.nextID
	t.nextID++
	if listing.Property.CreatedAt.IsZero() {
		listing.Property.CreatedAt = now
	}
	listing.Property.UpdatedAt = now
	t.byExternal[listing.Property.ExternalID] = len(t.rows)
	t.rows = append(t.rows, listing)
	return domain.SaveCreated, nil
}

func (s *PartitionStore) PartitionStats(ctx context.Context, p domain.Partition) (domain.PartitionStats, error) {
	rows, err := s.snapshot(ctx, p)
	if err != nil {
		return domain.PartitionStats{}, err
	}

	var price, size, rooms average
	for _, l := range rows {
		price.add(l.Property.Price)
		size.add(l.Property.Size)
		rooms.add(l.Property.Rooms)
	}

	return domain.PartitionStats{
		Count:      int64(len(rows)),
		AvgPrice:   price.value(),
		AvgSize:    size.value(),
		AvgRooms:   rooms.value(),
		PriceCount: price.n,
		SizeCount:  size.n,
		RoomsCount: rooms.n,
	}, nil
}

func (s *PartitionStore) MonthlyAveragePrice(ctx context.Context, p domain.Partition, since time.Time) ([]domain.MonthlyAverage, error) {
	rows, err := s.snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*average)
	for _, l := range rows {
		if !l.Property.CreatedAt.After(since) {
			continue
		}
		month := l.Property.CreatedAt.UTC().Format("2006-01")
		if byMonth[month] == nil {
			byMonth[month] = &average{}
		}
		byMonth[month].add(l.Property.Price)
	}

	out := make([]domain.MonthlyAverage, 0, len(byMonth))
	for month, avg := range byMonth {
		out = append(out, domain.MonthlyAverage{Month: month, AvgPrice: avg.value()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *PartitionStore) AddressCounts(ctx context.Context, p domain.Partition) ([]domain.AddressCount, error) {
	rows, err := s.snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var nullCount int64
	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, l := range rows {
		if l.Property.Address == nil {
			nullCount++
			continue
		}
		addr := *l.Property.Address
		if _, seen := counts[addr]; !seen {
			order = append(order, addr)
		}
		counts[addr]++
	}

	out := make([]domain.AddressCount, 0, len(order)+1)
	for _, addr := range order {
		out = append(out, domain.AddressCount{Address: &addr, Count: counts[addr]})
	}
	if nullCount > 0 {
		out = append(out, domain.AddressCount{Count: nullCount})
	}
	return out, nil
}

func (s *PartitionStore) FindListings(ctx context.Context, p domain.Partition, pred domain.Predicate) ([]domain.ListingRow, error) {
	rows, err := s.snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ListingRow, 0, len(rows))
	for _, l := range rows {
		row := toRow(l.Property)
		if pred.Matches(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *PartitionStore) GetListing(ctx context.Context, p domain.Partition, externalID string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tables[p.Type]
	idx, ok := t.byExternal[externalID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	listing := t.rows[idx]
	return &listing, nil
}

// snapshot копирует строки партиции под read-lock
func (s *PartitionStore) snapshot(ctx context.Context, p domain.Partition) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[p.Type]
	if !ok {
		return nil, nil
	}
	rows := make([]domain.Listing, len(t.rows))
	copy(rows, t.rows)
	return rows, nil
}

func toRow(p domain.Property) domain.ListingRow {
	return domain.ListingRow{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Title:      p.Title,
		Price:      p.Price,
		Size:       p.Size,
		Rooms:      p.Rooms,
		Address:    p.Address,
		URL:        p.URL,
		CreatedAt:  p.CreatedAt,
	}
}

// average считает среднее так же, как AVG в SQL: NULL пропускается, пустой набор дает NULL
type average struct {
	sum float64
	n   int64
}

func (a *average) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a *average) value() *float64 {
	if a.n == 0 {
		return nil
	}
	v := a.sum / float64(a.n)
	return &v
}
