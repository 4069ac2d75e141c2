package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type GetTypeDistributionUseCase interface {
	Execute(ctx context.Context) (*domain.Chart[int64], error)
}
