package usecase

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// MaxPageLimit - верхняя граница limit для поиска
const MaxPageLimit = 500

// SearchListingsUseCase собирает объявления из выбранных партиций в один список.
// Порядок: партиции по реестру, внутри партиции порядок хранения. Глобальной сортировки нет.
type SearchListingsUseCase struct {
	store    port.PartitionStorePort
	executor *FanOutExecutor
	metrics  port.MetricsPort
}

func NewSearchListingsUseCase(store port.PartitionStorePort, executor *FanOutExecutor, metrics port.MetricsPort) *SearchListingsUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SearchListingsUseCase{store: store, executor: executor, metrics: metrics}
}

func (uc *SearchListingsUseCase) Execute(ctx context.Context, filters domain.SearchFilters, page domain.Page) (*domain.ListingsResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SearchListings",
		"type":     filters.Type,
		"city":     filters.City,
		"limit":    page.Limit,
		"offset":   page.Offset,
	})

	ucLogger.Info("Use case started", nil)

	partitions, fellBack := domain.ResolvePartitions(filters.Type)
	if fellBack {
		ucLogger.Warn("Unknown property type, searching all partitions", port.Fields{"requested_type": filters.Type})
		uc.metrics.PartitionFallback()
	}

	predicate := BuildPredicate(filters)

	results, err := fanOut(ctx, uc.executor, "search", partitions,
		func(ctx context.Context, p domain.Partition) ([]domain.ListingRow, error) {
			return uc.store.FindListings(ctx, p, predicate)
		})
	if err != nil {
		ucLogger.Error("Partition query failed", err, errorFields(err))
		return nil, err
	}

	listings := make([]domain.ListingRow, 0)
	for _, r := range results {
		for _, row := range r.value {
			row.PropertyType = r.partition.Type
			listings = append(listings, row)
		}
	}

	result := &domain.ListingsResult{
		Listings: applyPage(listings, page),
		Total:    len(listings),
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"partitions":  len(partitions),
		"total_found": result.Total,
		"returned":    len(result.Listings),
	})
	return result, nil
}

func applyPage(rows []domain.ListingRow, page domain.Page) []domain.ListingRow {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []domain.ListingRow{}
	}
	rows = rows[offset:]

	limit := page.Limit
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
