package domain

import (
	"errors"
	"fmt"
)

// ErrListingNotFound возвращается, когда объявления нет в указанной партиции
var ErrListingNotFound = errors.New("listing not found")

// PartitionQueryError - сбой запроса к одной партиции. Частичный результат не возвращается.
type PartitionQueryError struct {
	Partition PropertyType
	Op        string
	Err       error
}

func (e *PartitionQueryError) Error() string {
	return fmt.Sprintf("partition %s: %s failed: %v", e.Partition, e.Op, e.Err)
}

func (e *PartitionQueryError) Unwrap() error {
	return e.Err
}

// InvalidFilterError - значение фильтра не удалось разобрать
type InvalidFilterError struct {
	Filter string
	Value  string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %s", e.Value, e.Filter)
}

// ValidationError - объявление нарушает инварианты модели
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid listing: %s %s", e.Field, e.Reason)
}
