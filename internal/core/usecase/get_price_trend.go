package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// DefaultTrendMonths - окно тренда цен по умолчанию
const DefaultTrendMonths = 12

type GetPriceTrendUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	cache    *ResultCache
	months   int
	now      func() time.Time
}

func NewGetPriceTrendUseCase(store port.PartitionStorePort, executor *FanOutExecutor, cache *ResultCache, months int) *GetPriceTrendUseCase {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	return &GetPriceTrendUseCase{
		store:    store,
		executor: executor,
		cache:    cache,
		months:   months,
		now:      time.Now,
	}
}

func (uc *GetPriceTrendUseCase) Execute(ctx context.Context) (*domain.Chart[float64], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetPriceTrend",
		"months":   uc.months,
	})

	ucLogger.Info("Use case started", nil)

	since := uc.now().UTC().AddDate(0, -uc.months, 0)
	key := fmt.Sprintf("analytics:price-trend:%d:%s", uc.months, since.Format("2006-01-02"))

	chart, err := loadCached(ctx, uc.cache, key, func(ctx context.Context) (domain.Chart[float64], error) {
		results, err := fanOut(ctx, uc.executor, "price_trend", domain.Partitions(),
			func(ctx context.Context, p domain.Partition) ([]domain.MonthlyAverage, error) {
				return uc.store.MonthlyAveragePrice(ctx, p, since)
			})
		if err != nil {
			return domain.Chart[float64]{}, err
		}
		return MergeTrend(values(results)), nil
	})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"months_found": len(chart.Labels)})
	return &chart, nil
}
