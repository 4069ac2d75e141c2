package port

import (
	"context"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

// PartitionStorePort - запросы к одной партиции. Ядро само раскидывает их по партициям
// и само сливает результаты, хранилище ничего не знает о соседних таблицах.
type PartitionStorePort interface {
	// PartitionStats: COUNT(*) и средние price/size/rooms без учета NULL
	PartitionStats(ctx context.Context, p domain.Partition) (domain.PartitionStats, error)

	// MonthlyAveragePrice группирует объявления, созданные после since, по месяцу created_at
	MonthlyAveragePrice(ctx context.Context, p domain.Partition, since time.Time) ([]domain.MonthlyAverage, error)

	// AddressCounts возвращает число объявлений на каждый уникальный адрес
	AddressCounts(ctx context.Context, p domain.Partition) ([]domain.AddressCount, error)

	// FindListings возвращает строки партиции, прошедшие предикат, в порядке хранения
	FindListings(ctx context.Context, p domain.Partition, pred domain.Predicate) ([]domain.ListingRow, error)

	GetListing(ctx context.Context, p domain.Partition, externalID string) (*domain.Listing, error)
}

// ListingSinkPort - запись объявлений, приходящих из пайплайна сбора данных
type ListingSinkPort interface {
	Upsert(ctx context.Context, listing domain.Listing) (domain.SaveOutcome, error)
}
