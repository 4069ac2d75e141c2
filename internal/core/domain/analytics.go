package domain

import "time"

// PartitionStats - частичный агрегат одной партиции.
// Avg* равен nil, если в партиции нет ни одного непустого значения.
type PartitionStats struct {
	Count      int64
	AvgPrice   *float64
	AvgSize    *float64
	AvgRooms   *float64
	PriceCount int64
	SizeCount  int64
	RoomsCount int64
}

// Stats - сводка по всем партициям
type Stats struct {
	Total    int64   `json:"total"`
	AvgPrice float64 `json:"avgPrice"`
	AvgSize  float64 `json:"avgSize"`
	AvgRooms float64 `json:"avgRooms"`
}

// MonthlyAverage - средняя цена за месяц в одной партиции. Month в формате YYYY-MM.
type MonthlyAverage struct {
	Month    string
	AvgPrice *float64
}

// AddressCount - число объявлений с одинаковым адресом в одной партиции
type AddressCount struct {
	Address *string
	Count   int64
}

// Chart - серия для графика: Labels[i] соответствует Series[i]
type Chart[T int64 | float64] struct {
	Labels []string `json:"labels"`
	Series []T      `json:"series"`
}

// ListingRow - унифицированная проекция объявления для поиска
type ListingRow struct {
	ID           int64        `json:"id"`
	ExternalID   string       `json:"externalId"`
	Title        *string      `json:"title"`
	Price        *float64     `json:"price"`
	Size         *float64     `json:"size"`
	Rooms        *float64     `json:"rooms"`
	Address      *string      `json:"address"`
	URL          *string      `json:"url"`
	CreatedAt    time.Time    `json:"created_at"`
	PropertyType PropertyType `json:"property_type"`
}

// ListingsResult - результат поиска. Total считается до пагинации.
type ListingsResult struct {
	Listings []ListingRow `json:"properties"`
	Total    int          `json:"total"`
}
