package usecase

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// GetAvgPriceByTypeUseCase - средняя цена по каждой партиции. Партиция без цен дает 0.
type GetAvgPriceByTypeUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	cache    *ResultCache
}

func NewGetAvgPriceByTypeUseCase(store port.PartitionStorePort, executor *FanOutExecutor, cache *ResultCache) *GetAvgPriceByTypeUseCase {
	return &GetAvgPriceByTypeUseCase{store: store, executor: executor, cache: cache}
}

func (uc *GetAvgPriceByTypeUseCase) Execute(ctx context.Context) (*domain.Chart[float64], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetAvgPriceByType"})

	ucLogger.Info("Use case started", nil)

	chart, err := loadCached(ctx, uc.cache, "analytics:avg-price-by-type", func(ctx context.Context) (domain.Chart[float64], error) {
		results, err := fanOut(ctx, uc.executor, "avg_price_by_type", domain.Partitions(), uc.store.PartitionStats)
		if err != nil {
			return domain.Chart[float64]{}, err
		}
		return collectByType(results, func(s domain.PartitionStats) float64 {
			if s.AvgPrice == nil {
				return 0
			}
			return *s.AvgPrice
		}), nil
	})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return &chart, nil
}
