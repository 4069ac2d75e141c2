package domain

import "strings"

// Field - закрытый набор колонок, по которым разрешено фильтровать
type Field string

const (
	FieldAddress Field = "address"
	FieldPrice   Field = "price"
	FieldSize    Field = "size"
	FieldRooms   Field = "rooms"
)

type Operator string

const (
	OpContains Operator = "contains" // без учета регистра
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpEq       Operator = "eq"
)

// Condition - одно условие. Для OpContains Value это string, для остальных float64.
type Condition struct {
	Field Field
	Op    Operator
	Value any
}

// Predicate - конъюнкция условий. Пустой предикат пропускает все строки.
type Predicate struct {
	Conditions []Condition
}

func (p Predicate) IsEmpty() bool {
	return len(p.Conditions) == 0
}

// Matches вычисляет предикат в памяти с семантикой SQL: NULL не проходит ни одно условие.
func (p Predicate) Matches(row ListingRow) bool {
	for _, c := range p.Conditions {
		if !c.matches(row) {
			return false
		}
	}
	return true
}

func (c Condition) matches(row ListingRow) bool {
	if c.Field == FieldAddress {
		needle, ok := c.Value.(string)
		if !ok || row.Address == nil {
			return false
		}
		return c.Op == OpContains && strings.Contains(strings.ToLower(*row.Address), strings.ToLower(needle))
	}

	var actual *float64
	switch c.Field {
	case FieldPrice:
		actual = row.Price
	case FieldSize:
		actual = row.Size
	case FieldRooms:
		actual = row.Rooms
	}
	bound, ok := c.Value.(float64)
	if actual == nil || !ok {
		return false
	}

	switch c.Op {
	case OpGte:
		return *actual >= bound
	case OpLte:
		return *actual <= bound
	case OpEq:
		return *actual == bound
	}
	return false
}
