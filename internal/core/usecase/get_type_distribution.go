package usecase

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// GetTypeDistributionUseCase - количество объявлений в каждой партиции
type GetTypeDistributionUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	cache    *ResultCache
}

func NewGetTypeDistributionUseCase(store port.PartitionStorePort, executor *FanOutExecutor, cache *ResultCache) *GetTypeDistributionUseCase {
	return &GetTypeDistributionUseCase{store: store, executor: executor, cache: cache}
}

func (uc *GetTypeDistributionUseCase) Execute(ctx context.Context) (*domain.Chart[int64], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetTypeDistribution"})

	ucLogger.Info("Use case started", nil)

	chart, err := loadCached(ctx, uc.cache, "analytics:type-distribution", func(ctx context.Context) (domain.Chart[int64], error) {
		results, err := fanOut(ctx, uc.executor, "type_distribution", domain.Partitions(), uc.store.PartitionStats)
		if err != nil {
			return domain.Chart[int64]{}, err
		}
		return collectByType(results, func(s domain.PartitionStats) int64 { return s.Count }), nil
	})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return &chart, nil
}
