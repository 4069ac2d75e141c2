package domain

import (
	"fmt"
	"strings"
)

// PropertyType - ключ партиции. Набор значений закрыт, новые типы добавляются только здесь.
type PropertyType string

const (
	ApartmentRent  PropertyType = "apartment-rent"
	ApartmentBuy   PropertyType = "apartment-buy"
	CommercialRent PropertyType = "commercial-rent"
	CommercialBuy  PropertyType = "commercial-buy"
	HouseRent      PropertyType = "house-rent"
	HouseBuy       PropertyType = "house-buy"
	Land           PropertyType = "land"
	Parking        PropertyType = "parking"
)

// ExtensionKind определяет, какая таблица расширения допустима для партиции
type ExtensionKind string

const (
	ExtensionResidential ExtensionKind = "residential"
	ExtensionCommercial  ExtensionKind = "commercial"
	ExtensionLand        ExtensionKind = "land"
	ExtensionParking     ExtensionKind = "parking"
)

// Partition описывает одну физическую таблицу объявлений
type Partition struct {
	Type      PropertyType
	Table     string
	Label     string
	Extension ExtensionKind
}

// Порядок этого массива - канонический порядок партиций во всех ответах.
var registry = [...]Partition{
	{Type: ApartmentRent, Table: "wohnung_miete", Label: "Apartment Rent", Extension: ExtensionResidential},
	{Type: ApartmentBuy, Table: "wohnung_kauf", Label: "Apartment Buy", Extension: ExtensionResidential},
	{Type: CommercialRent, Table: "gewerbe_miete", Label: "Commercial Rent", Extension: ExtensionCommercial},
	{Type: CommercialBuy, Table: "gewerbe_kauf", Label: "Commercial Buy", Extension: ExtensionCommercial},
	{Type: HouseRent, Table: "haus_miete", Label: "House Rent", Extension: ExtensionResidential},
	{Type: HouseBuy, Table: "haus_kauf", Label: "House Buy", Extension: ExtensionResidential},
	{Type: Land, Table: "grundstueck_kauf", Label: "Land", Extension: ExtensionLand},
	{Type: Parking, Table: "parkplatz_miete", Label: "Parking", Extension: ExtensionParking},
}

// Partitions возвращает копию реестра в каноническом порядке
func Partitions() []Partition {
	out := make([]Partition, len(registry))
	copy(out, registry[:])
	return out
}

// Lookup ищет партицию по идентификатору типа
func Lookup(t PropertyType) (Partition, bool) {
	for _, p := range registry {
		if p.Type == t {
			return p, true
		}
	}
	return Partition{}, false
}

// lookupAlias принимает как id типа, так и имя таблицы (старые клиенты передают имя таблицы)
func lookupAlias(raw string) (Partition, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range registry {
		if string(p.Type) == key || p.Table == key {
			return p, true
		}
	}
	return Partition{}, false
}

// ParsePropertyType - строгий разбор для входящих событий, неизвестный тип это ошибка
func ParsePropertyType(raw string) (PropertyType, error) {
	p, ok := lookupAlias(raw)
	if !ok {
		return "", fmt.Errorf("unknown property type %q", raw)
	}
	return p.Type, nil
}

// ResolvePartitions определяет, какие партиции затрагивает запрос.
// Пустой тип - все партиции. Неизвестный тип - тоже все партиции, но fellBack=true,
// вызывающий обязан залогировать предупреждение и посчитать это в метриках.
func ResolvePartitions(raw string) (partitions []Partition, fellBack bool) {
	if strings.TrimSpace(raw) == "" {
		return Partitions(), false
	}
	if p, ok := lookupAlias(raw); ok {
		return []Partition{p}, false
	}
	return Partitions(), true
}
