package port

import "time"

// MetricsPort - счетчики движка запросов
type MetricsPort interface {
	ObservePartitionQuery(partition, op string, err error, duration time.Duration)
	// PartitionFallback - запрошенный тип пишется только в лог
	PartitionFallback()
	ObserveCache(event string)
}
