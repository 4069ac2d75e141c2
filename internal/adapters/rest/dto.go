package rest

import (
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Filter    string `json:"filter,omitempty"`
	Partition string `json:"partition,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ChartDataset - формат datasets, который ждет фронтенд на Chart.js
type ChartDataset[T int64 | float64] struct {
	Label string `json:"label"`
	Data  []T    `json:"data"`
}

type ChartResponse[T int64 | float64] struct {
	Labels   []string          `json:"labels"`
	Datasets []ChartDataset[T] `json:"datasets"`
	Series   []T               `json:"series"`
}

func newChartResponse[T int64 | float64](chart *domain.Chart[T], label string) ChartResponse[T] {
	labels := chart.Labels
	if labels == nil {
		labels = []string{}
	}
	series := chart.Series
	if series == nil {
		series = []T{}
	}
	return ChartResponse[T]{
		Labels:   labels,
		Datasets: []ChartDataset[T]{{Label: label, Data: series}},
		Series:   series,
	}
}

// ListingDetailsResponse - полная карточка объявления с расширением
type ListingDetailsResponse struct {
	ID                int64          `json:"id"`
	ExternalID        string         `json:"external_id"`
	PropertyType      string         `json:"property_type"`
	Title             *string        `json:"title"`
	Description       *string        `json:"description"`
	Address           *string        `json:"address"`
	City              *string        `json:"city"`
	District          *string        `json:"district"`
	PostalCode        *string        `json:"postal_code"`
	Price             *float64       `json:"price"`
	PricePerSqm       *float64       `json:"price_per_sqm"`
	Size              *float64       `json:"size"`
	Rooms             *float64       `json:"rooms"`
	Bedrooms          *int           `json:"bedrooms"`
	Bathrooms         *int           `json:"bathrooms"`
	FloorNumber       *int           `json:"floor_number"`
	YearBuilt         *int           `json:"year_built"`
	Condition         *string        `json:"condition"`
	HeatingType       *string        `json:"heating_type"`
	EnergyRating      *string        `json:"energy_rating"`
	PropertyStyle     *string        `json:"property_style"`
	Availability      *string        `json:"availability"`
	Latitude          *float64       `json:"latitude"`
	Longitude         *float64       `json:"longitude"`
	Features          map[string]any `json:"features,omitempty"`
	Equipment         map[string]any `json:"equipment,omitempty"`
	EnergyCertificate map[string]any `json:"energy_certificate,omitempty"`
	OtherCosts        map[string]any `json:"other_costs,omitempty"`
	ContactInfo       map[string]any `json:"contact_info,omitempty"`
	SearchParameters  map[string]any `json:"search_parameters,omitempty"`
	URL               *string        `json:"url"`
	Source            *string        `json:"source"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	ExtensionKind string      `json:"extension_kind,omitempty"`
	Extension     interface{} `json:"extension,omitempty"`
}

type ResidentialResponse struct {
	Balcony           *bool          `json:"balcony"`
	Garden            *bool          `json:"garden"`
	Terrace           *bool          `json:"terrace"`
	Elevator          *bool          `json:"elevator"`
	Cellar            *bool          `json:"cellar"`
	ParkingSpaces     *int           `json:"parking_spaces"`
	PetFriendly       *bool          `json:"pet_friendly"`
	BarrierFree       *bool          `json:"barrier_free"`
	Furnished         *bool          `json:"furnished"`
	AdditionalDetails map[string]any `json:"additional_details,omitempty"`
}

type CommercialResponse struct {
	CommercialType    *string        `json:"commercial_type"`
	FloorSpace        *float64       `json:"floor_space"`
	PlotSize          *float64       `json:"plot_size"`
	CeilingHeight     *float64       `json:"ceiling_height"`
	LoadingDocks      *int           `json:"loading_docks"`
	OfficeSpace       *float64       `json:"office_space"`
	StorageSpace      *float64       `json:"storage_space"`
	AdditionalDetails map[string]any `json:"additional_details,omitempty"`
}

type LandResponse struct {
	PlotSize          *float64       `json:"plot_size"`
	DevelopmentType   *string        `json:"development_type"`
	BuildingDensity   *float64       `json:"building_density"`
	FloorSpaceRatio   *float64       `json:"floor_space_ratio"`
	AdditionalDetails map[string]any `json:"additional_details,omitempty"`
}

type ParkingResponse struct {
	ParkingType       *string        `json:"parking_type"`
	Covered           *bool          `json:"covered"`
	SecurityFeatures  map[string]any `json:"security_features,omitempty"`
	AdditionalDetails map[string]any `json:"additional_details,omitempty"`
}

func newListingDetailsResponse(l *domain.Listing) ListingDetailsResponse {
	p := l.Property
	resp := ListingDetailsResponse{
		ID:                p.ID,
		ExternalID:        p.ExternalID,
		PropertyType:      string(p.PropertyType),
		Title:             p.Title,
		Description:       p.Description,
		Address:           p.Address,
		City:              p.City,
		District:          p.District,
		PostalCode:        p.PostalCode,
		Price:             p.Price,
		PricePerSqm:       p.PricePerSqm,
		Size:              p.Size,
		Rooms:             p.Rooms,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms,
		FloorNumber:       p.FloorNumber,
		YearBuilt:         p.YearBuilt,
		Condition:         p.Condition,
		HeatingType:       p.HeatingType,
		EnergyRating:      p.EnergyRating,
		PropertyStyle:     p.PropertyStyle,
		Availability:      p.Availability,
		Features:          p.Features,
		Equipment:         p.Equipment,
		EnergyCertificate: p.EnergyCertificate,
		OtherCosts:        p.OtherCosts,
		ContactInfo:       p.ContactInfo,
		SearchParameters:  p.SearchParameters,
		URL:               p.URL,
		Source:            p.Source,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Location != nil {
		lat, lon := p.Location.Lat(), p.Location.Lon()
		resp.Latitude, resp.Longitude = &lat, &lon
	}

	if l.Extension != nil {
		resp.ExtensionKind = string(l.Extension.Kind())
	}
	switch e := l.Extension.(type) {
	case *domain.Residential:
		resp.Extension = ResidentialResponse{
			Balcony: e.Balcony, Garden: e.Garden, Terrace: e.Terrace, Elevator: e.Elevator, Cellar: e.Cellar,
			ParkingSpaces: e.ParkingSpaces, PetFriendly: e.PetFriendly, BarrierFree: e.BarrierFree, Furnished: e.Furnished,
			AdditionalDetails: e.AdditionalDetails,
		}
	case *domain.Commercial:
		resp.Extension = CommercialResponse{
			CommercialType: e.CommercialType, FloorSpace: e.FloorSpace, PlotSize: e.PlotSize, CeilingHeight: e.CeilingHeight,
			LoadingDocks: e.LoadingDocks, OfficeSpace: e.OfficeSpace, StorageSpace: e.StorageSpace,
			AdditionalDetails: e.AdditionalDetails,
		}
	case *domain.LandPlot:
		resp.Extension = LandResponse{
			PlotSize: e.PlotSize, DevelopmentType: e.DevelopmentType, BuildingDensity: e.BuildingDensity,
			FloorSpaceRatio: e.FloorSpaceRatio, AdditionalDetails: e.AdditionalDetails,
		}
	case *domain.ParkingSpot:
		resp.Extension = ParkingResponse{
			ParkingType: e.ParkingType, Covered: e.Covered, SecurityFeatures: e.SecurityFeatures,
			AdditionalDetails: e.AdditionalDetails,
		}
	}
	return resp
}
