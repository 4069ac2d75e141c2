package domain

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Property - общая часть объявления, одинаковая для всех партиций
type Property struct {
	ID           int64
	ExternalID   string
	PropertyType PropertyType

	Title       *string
	Description *string
	Address     *string
	City        *string
	District    *string
	PostalCode  *string

	Price       *float64
	PricePerSqm *float64
	Size        *float64
	Rooms       *float64
	Bedrooms    *int
	Bathrooms   *int
	FloorNumber *int
	YearBuilt   *int

	Condition     *string
	HeatingType   *string
	EnergyRating  *string
	PropertyStyle *string
	Availability  *string

	// Location хранится как [lon, lat]
	Location *orb.Point

	Features          map[string]any
	Equipment         map[string]any
	EnergyCertificate map[string]any
	OtherCosts        map[string]any
	ContactInfo       map[string]any
	SearchParameters  map[string]any

	URL    *string
	Source *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Extension - запись расширения, специфичная для вида объекта.
// Реализации перечислены ниже, других быть не может.
type Extension interface {
	Kind() ExtensionKind
	isExtension()
}

type Residential struct {
	Balcony           *bool
	Garden            *bool
	Terrace           *bool
	Elevator          *bool
	Cellar            *bool
	ParkingSpaces     *int
	PetFriendly       *bool
	BarrierFree       *bool
	Furnished         *bool
	AdditionalDetails map[string]any
}

type Commercial struct {
	CommercialType    *string
	FloorSpace        *float64
	PlotSize          *float64
	CeilingHeight     *float64
	LoadingDocks      *int
	OfficeSpace       *float64
	StorageSpace      *float64
	AdditionalDetails map[string]any
}

type LandPlot struct {
	PlotSize          *float64
	DevelopmentType   *string
	BuildingDensity   *float64
	FloorSpaceRatio   *float64
	AdditionalDetails map[string]any
}

type ParkingSpot struct {
	ParkingType       *string
	Covered           *bool
	SecurityFeatures  map[string]any
	AdditionalDetails map[string]any
}

func (*Residential) Kind() ExtensionKind { return ExtensionResidential }
func (*Commercial) Kind() ExtensionKind  { return ExtensionCommercial }
func (*LandPlot) Kind() ExtensionKind    { return ExtensionLand }
func (*ParkingSpot) Kind() ExtensionKind { return ExtensionParking }

func (*Residential) isExtension() {}
func (*Commercial) isExtension()  {}
func (*LandPlot) isExtension()    {}
func (*ParkingSpot) isExtension() {}

// Listing - агрегат: базовая запись плюс не более одного расширения
type Listing struct {
	Property  Property
	Extension Extension
}

// Validate проверяет, что тип известен и вид расширения соответствует партиции
func (l Listing) Validate() error {
	if strings.TrimSpace(l.Property.ExternalID) == "" {
		return &ValidationError{Field: "external_id", Reason: "is required"}
	}
	p, ok := Lookup(l.Property.PropertyType)
	if !ok {
		return &ValidationError{Field: "property_type", Reason: "is unknown: " + string(l.Property.PropertyType)}
	}
	if l.Extension != nil && l.Extension.Kind() != p.Extension {
		return &ValidationError{
			Field:  "extension",
			Reason: "of kind " + string(l.Extension.Kind()) + " is not allowed for " + string(p.Type),
		}
	}
	if loc := l.Property.Location; loc != nil {
		if loc.Lat() < -90 || loc.Lat() > 90 || loc.Lon() < -180 || loc.Lon() > 180 {
			return &ValidationError{Field: "location", Reason: "is out of range"}
		}
	}
	return nil
}

// SaveOutcome - результат upsert'а
type SaveOutcome string

const (
	SaveCreated SaveOutcome = "created"
	SaveUpdated SaveOutcome = "updated"
)
