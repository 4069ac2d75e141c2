package usecase

import (
	"context"
	"fmt"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

type GetStatsUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	cache    *ResultCache
	weighted bool
}

func NewGetStatsUseCase(store port.PartitionStorePort, executor *FanOutExecutor, cache *ResultCache, weighted bool) *GetStatsUseCase {
	return &GetStatsUseCase{store: store, executor: executor, cache: cache, weighted: weighted}
}

func (uc *GetStatsUseCase) Execute(ctx context.Context) (*domain.Stats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetStats",
		"weighted": uc.weighted,
	})

	ucLogger.Info("Use case started", nil)

	key := fmt.Sprintf("analytics:stats:weighted=%t", uc.weighted)
	stats, err := loadCached(ctx, uc.cache, key, func(ctx context.Context) (domain.Stats, error) {
		results, err := fanOut(ctx, uc.executor, "stats", domain.Partitions(), uc.store.PartitionStats)
		if err != nil {
			return domain.Stats{}, err
		}
		return MergeStats(values(results), uc.weighted), nil
	})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"total": stats.Total})
	return &stats, nil
}
