package usecase

import (
	"context"
	"errors"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// GetListingUseCase возвращает объявление целиком, вместе с расширением
type GetListingUseCase struct {
	store port.PartitionStorePort
}

func NewGetListingUseCase(store port.PartitionStorePort) *GetListingUseCase {
	return &GetListingUseCase{store: store}
}

func (uc *GetListingUseCase) Execute(ctx context.Context, propertyType, externalID string) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetListing",
		"type":        propertyType,
		"external_id": externalID,
	})

	ucLogger.Info("Use case started", nil)

	pt, err := domain.ParsePropertyType(propertyType)
	if err != nil {
		// Для точечного чтения нет смысла обходить все партиции
		ucLogger.Info("Unknown property type", nil)
		return nil, domain.ErrListingNotFound
	}
	partition, _ := domain.Lookup(pt)

	listing, err := uc.store.GetListing(ctx, partition, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Info("Listing not found", nil)
			return nil, err
		}
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, &domain.PartitionQueryError{Partition: pt, Op: "get_listing", Err: err}
	}

	ucLogger.Info("Use case finished successfully", nil)
	return listing, nil
}

