package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type GetPriceTrendUseCase interface {
	Execute(ctx context.Context) (*domain.Chart[float64], error)
}
