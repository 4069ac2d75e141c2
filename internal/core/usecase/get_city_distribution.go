package usecase

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

type GetCityDistributionUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	cache    *ResultCache
}

func NewGetCityDistributionUseCase(store port.PartitionStorePort, executor *FanOutExecutor, cache *ResultCache) *GetCityDistributionUseCase {
	return &GetCityDistributionUseCase{store: store, executor: executor, cache: cache}
}

func (uc *GetCityDistributionUseCase) Execute(ctx context.Context) (*domain.Chart[int64], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetCityDistribution"})

	ucLogger.Info("Use case started", nil)

	chart, err := loadCached(ctx, uc.cache, "analytics:city-distribution", func(ctx context.Context) (domain.Chart[int64], error) {
		results, err := fanOut(ctx, uc.executor, "city_distribution", domain.Partitions(), uc.store.AddressCounts)
		if err != nil {
			return domain.Chart[int64]{}, err
		}
		return MergeCityCounts(values(results)), nil
	})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"cities": len(chart.Labels)})
	return &chart, nil
}
