package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Имена фильтров в том виде, в котором их передает клиент
const (
	FilterType     = "type"
	FilterCity     = "city"
	FilterMinPrice = "minPrice"
	FilterMaxPrice = "maxPrice"
	FilterMinSize  = "minSize"
	FilterMaxSize  = "maxSize"
	FilterRooms    = "rooms"
)

// SearchFilterNames - все поддерживаемые фильтры поиска
var SearchFilterNames = []string{
	FilterType, FilterCity, FilterMinPrice, FilterMaxPrice, FilterMinSize, FilterMaxSize, FilterRooms,
}

// SearchFilters - типизированные фильтры поиска. nil/пустая строка означает "не задан".
type SearchFilters struct {
	Type     string
	City     string
	MinPrice *float64
	MaxPrice *float64
	MinSize  *float64
	MaxSize  *float64
	Rooms    *float64
}

// Page - пагинация поверх собранного результата. Limit 0 - без ограничения.
type Page struct {
	Limit  int
	Offset int
}

// ParseSearchFilters разбирает сырые значения транспорта.
// Нечисловое значение числового фильтра или текст не в UTF-8 дает *InvalidFilterError.
func ParseSearchFilters(raw map[string]string) (SearchFilters, error) {
	var f SearchFilters

	text := []struct {
		name string
		dst  *string
	}{
		{FilterType, &f.Type},
		{FilterCity, &f.City},
	}
	for _, t := range text {
		value := raw[t.name]
		if !utf8.ValidString(value) {
			return SearchFilters{}, &InvalidFilterError{Filter: t.name, Value: strings.ToValidUTF8(value, "\uFFFD")}
		}
		*t.dst = strings.TrimSpace(value)
	}

	numeric := []struct {
		name string
		dst  **float64
	}{
		{FilterMinPrice, &f.MinPrice},
		{FilterMaxPrice, &f.MaxPrice},
		{FilterMinSize, &f.MinSize},
		{FilterMaxSize, &f.MaxSize},
		{FilterRooms, &f.Rooms},
	}
	for _, n := range numeric {
		v, err := parseOptionalFloat(n.name, raw[n.name])
		if err != nil {
			return SearchFilters{}, err
		}
		*n.dst = v
	}
	return f, nil
}

func parseOptionalFloat(name, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &InvalidFilterError{Filter: name, Value: value}
	}
	return &v, nil
}
