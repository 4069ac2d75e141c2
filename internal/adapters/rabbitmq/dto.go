package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/domain"

	"github.com/paulmach/orb"
)

// ListingScrapedEventDTO - тело события ListingScrapedEvent/1.0.0
type ListingScrapedEventDTO struct {
	ExternalID   string  `json:"external_id"`
	PropertyType string  `json:"property_type"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	District     *string `json:"district"`
	PostalCode   *string `json:"postal_code"`

	Price       *float64 `json:"price"`
	PricePerSqm *float64 `json:"price_per_sqm"`
	Size        *float64 `json:"size"`
	Rooms       *float64 `json:"rooms"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	FloorNumber *int     `json:"floor_number"`
	YearBuilt   *int     `json:"year_built"`

	Condition     *string `json:"condition"`
	HeatingType   *string `json:"heating_type"`
	EnergyRating  *string `json:"energy_rating"`
	PropertyStyle *string `json:"property_style"`
	Availability  *string `json:"availability"`

	Location *LocationDTO `json:"location"`

	Features          map[string]any `json:"features"`
	Equipment         map[string]any `json:"equipment"`
	EnergyCertificate map[string]any `json:"energy_certificate"`
	OtherCosts        map[string]any `json:"other_costs"`
	ContactInfo       map[string]any `json:"contact_info"`
	SearchParameters  map[string]any `json:"search_parameters"`

	URL       *string    `json:"url"`
	Source    *string    `json:"source"`
	ScrapedAt *time.Time `json:"scraped_at"`

	Extension json.RawMessage `json:"extension"`
}

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type extensionHeader struct {
	Kind domain.ExtensionKind `json:"kind"`
}

type ResidentialDTO struct {
	Balcony           *bool          `json:"balcony"`
	Garden            *bool          `json:"garden"`
	Terrace           *bool          `json:"terrace"`
	Elevator          *bool          `json:"elevator"`
	Cellar            *bool          `json:"cellar"`
	ParkingSpaces     *int           `json:"parking_spaces"`
	PetFriendly       *bool          `json:"pet_friendly"`
	BarrierFree       *bool          `json:"barrier_free"`
	Furnished         *bool          `json:"furnished"`
	AdditionalDetails map[string]any `json:"additional_details"`
}

type CommercialDTO struct {
	CommercialType    *string        `json:"commercial_type"`
	FloorSpace        *float64       `json:"floor_space"`
	PlotSize          *float64       `json:"plot_size"`
	CeilingHeight     *float64       `json:"ceiling_height"`
	LoadingDocks      *int           `json:"loading_docks"`
	OfficeSpace       *float64       `json:"office_space"`
	StorageSpace      *float64       `json:"storage_space"`
	AdditionalDetails map[string]any `json:"additional_details"`
}

type LandDTO struct {
	PlotSize          *float64       `json:"plot_size"`
	DevelopmentType   *string        `json:"development_type"`
	BuildingDensity   *float64       `json:"building_density"`
	FloorSpaceRatio   *float64       `json:"floor_space_ratio"`
	AdditionalDetails map[string]any `json:"additional_details"`
}

type ParkingDTO struct {
	ParkingType       *string        `json:"parking_type"`
	Covered           *bool          `json:"covered"`
	SecurityFeatures  map[string]any `json:"security_features"`
	AdditionalDetails map[string]any `json:"additional_details"`
}

// ExtensionUnmarshaler разбирает расширение одного вида
type ExtensionUnmarshaler interface {
	UnmarshalExtension(data json.RawMessage) (domain.Extension, error)
}

type ResidentialUnmarshaler struct{}

func (u *ResidentialUnmarshaler) UnmarshalExtension(data json.RawMessage) (domain.Extension, error) {
	var dto ResidentialDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return &domain.Residential{
		Balcony: dto.Balcony, Garden: dto.Garden, Terrace: dto.Terrace, Elevator: dto.Elevator, Cellar: dto.Cellar,
		ParkingSpaces: dto.ParkingSpaces, PetFriendly: dto.PetFriendly, BarrierFree: dto.BarrierFree, Furnished: dto.Furnished,
		AdditionalDetails: dto.AdditionalDetails,
	}, nil
}

type CommercialUnmarshaler struct{}

func (u *CommercialUnmarshaler) UnmarshalExtension(data json.RawMessage) (domain.Extension, error) {
	var dto CommercialDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return &domain.Commercial{
		CommercialType: dto.CommercialType, FloorSpace: dto.FloorSpace, PlotSize: dto.PlotSize,
		CeilingHeight: dto.CeilingHeight, LoadingDocks: dto.LoadingDocks,
		OfficeSpace: dto.OfficeSpace, StorageSpace: dto.StorageSpace,
		AdditionalDetails: dto.AdditionalDetails,
	}, nil
}

type LandUnmarshaler struct{}

func (u *LandUnmarshaler) UnmarshalExtension(data json.RawMessage) (domain.Extension, error) {
	var dto LandDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return &domain.LandPlot{
		PlotSize: dto.PlotSize, DevelopmentType: dto.DevelopmentType,
		BuildingDensity: dto.BuildingDensity, FloorSpaceRatio: dto.FloorSpaceRatio,
		AdditionalDetails: dto.AdditionalDetails,
	}, nil
}

type ParkingUnmarshaler struct{}

func (u *ParkingUnmarshaler) UnmarshalExtension(data json.RawMessage) (domain.Extension, error) {
	var dto ParkingDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return &domain.ParkingSpot{
		ParkingType: dto.ParkingType, Covered: dto.Covered,
		SecurityFeatures: dto.SecurityFeatures, AdditionalDetails: dto.AdditionalDetails,
	}, nil
}

func newExtensionRegistry() map[domain.ExtensionKind]ExtensionUnmarshaler {
	return map[domain.ExtensionKind]ExtensionUnmarshaler{
		domain.ExtensionResidential: &ResidentialUnmarshaler{},
		domain.ExtensionCommercial:  &CommercialUnmarshaler{},
		domain.ExtensionLand:        &LandUnmarshaler{},
		domain.ExtensionParking:     &ParkingUnmarshaler{},
	}
}

// toDomainListing переводит DTO в агрегат. Время скрейпа становится created_at новой записи.
func toDomainListing(dto *ListingScrapedEventDTO, registry map[domain.ExtensionKind]ExtensionUnmarshaler) (domain.Listing, error) {
	pt, err := domain.ParsePropertyType(dto.PropertyType)
	if err != nil {
		return domain.Listing{}, err
	}

	prop := domain.Property{
		ExternalID:        dto.ExternalID,
		PropertyType:      pt,
		Title:             dto.Title,
		Description:       dto.Description,
		Address:           dto.Address,
		City:              dto.City,
		District:          dto.District,
		PostalCode:        dto.PostalCode,
		Price:             dto.Price,
		PricePerSqm:       dto.PricePerSqm,
		Size:              dto.Size,
		Rooms:             dto.Rooms,
		Bedrooms:          dto.Bedrooms,
		Bathrooms:         dto.Bathrooms,
		FloorNumber:       dto.FloorNumber,
		YearBuilt:         dto.YearBuilt,
		Condition:         dto.Condition,
		HeatingType:       dto.HeatingType,
		EnergyRating:      dto.EnergyRating,
		PropertyStyle:     dto.PropertyStyle,
		Availability:      dto.Availability,
		Features:          dto.Features,
		Equipment:         dto.Equipment,
		EnergyCertificate: dto.EnergyCertificate,
		OtherCosts:        dto.OtherCosts,
		ContactInfo:       dto.ContactInfo,
		SearchParameters:  dto.SearchParameters,
		URL:               dto.URL,
		Source:            dto.Source,
	}
	if dto.Location != nil {
		prop.Location = &orb.Point{dto.Location.Lon, dto.Location.Lat}
	}
	if dto.ScrapedAt != nil {
		prop.CreatedAt = dto.ScrapedAt.UTC()
	}

	listing := domain.Listing{Property: prop}

	if len(dto.Extension) > 0 && string(dto.Extension) != "null" {
		var header extensionHeader
		if err := json.Unmarshal(dto.Extension, &header); err != nil {
			return domain.Listing{}, fmt.Errorf("failed to read extension kind: %w", err)
		}
		unmarshaler, ok := registry[header.Kind]
		if !ok {
			return domain.Listing{}, fmt.Errorf("unknown extension kind %q", header.Kind)
		}
		ext, err := unmarshaler.UnmarshalExtension(dto.Extension)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("failed to unmarshal %s extension: %w", header.Kind, err)
		}
		listing.Extension = ext
	}

	return listing, nil
}
