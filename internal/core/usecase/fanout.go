package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"

	"golang.org/x/sync/errgroup"
)

// FanOutConfig - параметры параллельного опроса партиций
type FanOutConfig struct {
	// PartitionTimeout ограничивает один запрос к партиции. 0 - без ограничения.
	PartitionTimeout time.Duration
	// MaxParallel - сколько партиций опрашивается одновременно. 0 - все сразу.
	MaxParallel int
}

// FanOutExecutor опрашивает партиции параллельно и падает на первой же ошибке
type FanOutExecutor struct {
	cfg     FanOutConfig
	metrics port.MetricsPort
}

func NewFanOutExecutor(cfg FanOutConfig, metrics port.MetricsPort) *FanOutExecutor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &FanOutExecutor{cfg: cfg, metrics: metrics}
}

type partitionResult[T any] struct {
	partition domain.Partition
	value     T
}

// fanOut выполняет query для каждой партиции. Результаты лежат в порядке partitions,
// независимо от того, в каком порядке завершились запросы. При первой ошибке
// остальные запросы отменяются, а вызывающий получает *domain.PartitionQueryError.
func fanOut[T any](
	ctx context.Context,
	ex *FanOutExecutor,
	op string,
	partitions []domain.Partition,
	query func(ctx context.Context, p domain.Partition) (T, error),
) ([]partitionResult[T], error) {
	results := make([]partitionResult[T], len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	if ex.cfg.MaxParallel > 0 {
		g.SetLimit(ex.cfg.MaxParallel)
	}

	for i, p := range partitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &domain.PartitionQueryError{Partition: p.Type, Op: op, Err: err}
			}

			qctx := gctx
			if ex.cfg.PartitionTimeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(gctx, ex.cfg.PartitionTimeout)
				defer cancel()
			}

			start := time.Now()
			value, err := query(qctx, p)
			ex.metrics.ObservePartitionQuery(string(p.Type), op, err, time.Since(start))
			if err != nil {
				return &domain.PartitionQueryError{Partition: p.Type, Op: op, Err: err}
			}

			results[i] = partitionResult[T]{partition: p, value: value}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func values[T any](results []partitionResult[T]) []T {
	out := make([]T, len(results))
	for i, r := range results {
		out[i] = r.value
	}
	return out
}

// errorFields достает имя партиции из ошибки для лога
func errorFields(err error) port.Fields {
	var pqErr *domain.PartitionQueryError
	if errors.As(err, &pqErr) {
		return port.Fields{"partition": string(pqErr.Partition), "op": pqErr.Op}
	}
	return nil
}

type noopMetrics struct{}

func (noopMetrics) ObservePartitionQuery(string, string, error, time.Duration) {}
func (noopMetrics) PartitionFallback()                                        {}
func (noopMetrics) ObserveCache(string)                                       {}
