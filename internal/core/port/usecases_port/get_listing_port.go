package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type GetListingUseCase interface {
	Execute(ctx context.Context, propertyType, externalID string) (*domain.Listing, error)
}
