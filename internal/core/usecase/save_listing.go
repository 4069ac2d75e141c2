package usecase

import (
	"context"
	"fmt"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// SaveListingUseCase - приемник объявлений из пайплайна сбора: валидация и upsert
type SaveListingUseCase struct {
	sink port.ListingSinkPort
}

func NewSaveListingUseCase(sink port.ListingSinkPort) *SaveListingUseCase {
	return &SaveListingUseCase{sink: sink}
}

func (uc *SaveListingUseCase) Execute(ctx context.Context, listing domain.Listing) (domain.SaveOutcome, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "SaveListing",
		"external_id":   listing.Property.ExternalID,
		"property_type": string(listing.Property.PropertyType),
	})

	ucLogger.Info("Use case started", nil)

	if err := listing.Validate(); err != nil {
		ucLogger.Warn("Listing rejected", port.Fields{"reason": err.Error()})
		return "", err
	}

	outcome, err := uc.sink.Upsert(ctx, listing)
	if err != nil {
		ucLogger.Error("Storage returned an error during save", err, nil)
		return "", fmt.Errorf("failed to save listing %s: %w", listing.Property.ExternalID, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"outcome": string(outcome)})
	return outcome, nil
}
