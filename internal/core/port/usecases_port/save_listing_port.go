package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type SaveListingUseCase interface {
	Execute(ctx context.Context, listing domain.Listing) (domain.SaveOutcome, error)
}
