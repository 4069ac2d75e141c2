package postgres

import (
	"fmt"
	"strings"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

// Колонки берутся только отсюда, значения фильтров уходят исключительно параметрами
var columnByField = map[domain.Field]string{
	domain.FieldAddress: "address",
	domain.FieldPrice:   "price",
	domain.FieldSize:    "size",
	domain.FieldRooms:   "rooms",
}

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{argId: 1, args: make([]interface{}, 0)}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyPredicate переводит предикат в WHERE с плейсхолдерами $n
func applyPredicate(pred domain.Predicate) (string, []interface{}, error) {
	qb := newQueryBuilder()

	for _, c := range pred.Conditions {
		column, ok := columnByField[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}

		switch c.Op {
		case domain.OpContains:
			needle, ok := c.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("filter %s expects a string, got %T", c.Field, c.Value)
			}
			// Подстрока без учета регистра, метасимволы LIKE экранируются
			qb.addCondition("%s ILIKE $%d", column, "%"+likeEscaper.Replace(needle)+"%")
		case domain.OpGte, domain.OpLte, domain.OpEq:
			bound, ok := c.Value.(float64)
			if !ok {
				return "", nil, fmt.Errorf("filter %s expects a number, got %T", c.Field, c.Value)
			}
			qb.addCondition(comparisonFormat[c.Op], column, bound)
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
	}

	where, args := qb.build()
	return where, args, nil
}

var comparisonFormat = map[domain.Operator]string{
	domain.OpGte: "%s >= $%d",
	domain.OpLte: "%s <= $%d",
	domain.OpEq:  "%s = $%d",
}
