package usecase

import "github.com/ferone/Germany-real-sate/internal/core/domain"

// BuildPredicate превращает фильтры в конъюнкцию условий. Незаданные фильтры
// условий не добавляют, границы диапазонов включительные. Type сюда не попадает,
// он выбирает партиции.
func BuildPredicate(filters domain.SearchFilters) domain.Predicate {
	var conditions []domain.Condition

	if filters.City != "" {
		conditions = append(conditions, domain.Condition{Field: domain.FieldAddress, Op: domain.OpContains, Value: filters.City})
	}

	addRange := func(field domain.Field, min, max *float64) {
		if min != nil {
			conditions = append(conditions, domain.Condition{Field: field, Op: domain.OpGte, Value: *min})
		}
		if max != nil {
			conditions = append(conditions, domain.Condition{Field: field, Op: domain.OpLte, Value: *max})
		}
	}
	addRange(domain.FieldPrice, filters.MinPrice, filters.MaxPrice)
	addRange(domain.FieldSize, filters.MinSize, filters.MaxSize)

	if filters.Rooms != nil {
		conditions = append(conditions, domain.Condition{Field: domain.FieldRooms, Op: domain.OpEq, Value: *filters.Rooms})
	}

	return domain.Predicate{Conditions: conditions}
}
