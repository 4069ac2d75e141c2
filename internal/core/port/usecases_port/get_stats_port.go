package usecases_port

import (
	"context"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type GetStatsUseCase interface {
	Execute(ctx context.Context) (*domain.Stats, error)
}
