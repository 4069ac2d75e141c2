package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type SearchListingsUseCase interface {
	Execute(ctx context.Context, filters domain.SearchFilters, page domain.Page) (*domain.ListingsResult, error)
}
