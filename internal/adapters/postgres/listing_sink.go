package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision 7 - ячейка примерно 150x150 м
const GeohashPrecision = 7

var propertyColumns = []string{
	"external_id", "property_type", "title", "description", "address", "city", "district", "postal_code",
	"price", "price_per_sqm", "size", "rooms", "bedrooms", "bathrooms", "floor_number", "year_built",
	"condition", "heating_type", "energy_rating", "property_style", "availability",
	"latitude", "longitude", "geohash",
	"features", "equipment", "energy_certificate", "other_costs", "contact_info", "search_parameters",
	"url", "source", "created_at",
}

// buildUpsertSQL строит INSERT ... ON CONFLICT. При обновлении id и created_at не трогаются.
// insertOnly - колонки, которые пишутся только при вставке. extraSet добавляется в SET как есть.
func buildUpsertSQL(table string, columns, conflict []string, insertOnly map[string]bool, extraSet []string, returning string) string {
	placeholders := make([]string, len(columns))
	updates := append(make([]string, 0, len(columns)+len(extraSet)), extraSet...)
	conflictSet := make(map[string]bool, len(conflict))
	for _, c := range conflict {
		conflictSet[c] = true
	}

	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col == "created_at" {
			placeholders[i] = fmt.Sprintf("COALESCE($%d, NOW())", i+1)
		}
		if conflictSet[col] || insertOnly[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflict, ", "),
		strings.Join(updates, ", "),
	)
	if returning != "" {
		sb.WriteString(" RETURNING " + returning)
	}
	return sb.String()
}

// Upsert пишет базовую запись и расширение в одной транзакции
func (s *PartitionStore) Upsert(ctx context.Context, listing domain.Listing) (domain.SaveOutcome, error) {
	if err := listing.Validate(); err != nil {
		return "", err
	}
	p, _ := domain.Lookup(listing.Property.PropertyType)

	repoLogger := s.logger(ctx, "Upsert", p).WithFields(port.Fields{"external_id": listing.Property.ExternalID})
	repoLogger.Debug("Upserting listing", nil)

	args, err := propertyArgs(listing.Property)
	if err != nil {
		return "", fmt.Errorf("failed to encode listing %s: %w", listing.Property.ExternalID, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := buildUpsertSQL(tableName(p), propertyColumns, []string{"external_id"},
		map[string]bool{"created_at": true}, []string{"updated_at = NOW()"}, "(xmax = 0)")

	var inserted bool
	if err := tx.QueryRow(ctx, query, args...).Scan(&inserted); err != nil {
		repoLogger.Error("Failed to upsert listing", err, port.Fields{"query": query})
		return "", fmt.Errorf("failed to upsert listing into %s: %w", p.Table, err)
	}

	if listing.Extension != nil {
		if err := upsertExtension(ctx, tx, p, listing.Property.ExternalID, listing.Extension); err != nil {
			repoLogger.Error("Failed to upsert listing extension", err, nil)
			return "", fmt.Errorf("failed to upsert extension for %s: %w", listing.Property.ExternalID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	outcome := domain.SaveUpdated
	if inserted {
		outcome = domain.SaveCreated
	}
	repoLogger.Debug("Listing upserted", port.Fields{"outcome": outcome})
	return outcome, nil
}

// propertyArgs возвращает значения в порядке propertyColumns
func propertyArgs(prop domain.Property) ([]interface{}, error) {
	var lat, lon *float64
	var hash *string
	if prop.Location != nil {
		la, lo := prop.Location.Lat(), prop.Location.Lon()
		h := geohash.EncodeWithPrecision(la, lo, GeohashPrecision)
		lat, lon, hash = &la, &lo, &h
	}

	docs := make([][]byte, 0, 6)
	for _, doc := range []map[string]any{
		prop.Features, prop.Equipment, prop.EnergyCertificate,
		prop.OtherCosts, prop.ContactInfo, prop.SearchParameters,
	} {
		raw, err := encodeDocument(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}

	var createdAt interface{}
	if !prop.CreatedAt.IsZero() {
		createdAt = prop.CreatedAt
	}

	return []interface{}{
		prop.ExternalID, string(prop.PropertyType), prop.Title, prop.Description, prop.Address, prop.City, prop.District, prop.PostalCode,
		prop.Price, prop.PricePerSqm, prop.Size, prop.Rooms, prop.Bedrooms, prop.Bathrooms, prop.FloorNumber, prop.YearBuilt,
		prop.Condition, prop.HeatingType, prop.EnergyRating, prop.PropertyStyle, prop.Availability,
		lat, lon, hash,
		docs[0], docs[1], docs[2], docs[3], docs[4], docs[5],
		prop.URL, prop.Source, createdAt,
	}, nil
}

func upsertExtension(ctx context.Context, tx pgx.Tx, p domain.Partition, externalID string, ext domain.Extension) error {
	table, columns, values, err := extensionRow(ext)
	if err != nil {
		return err
	}

	columns = append([]string{"property_type", "external_id"}, columns...)
	args := append([]interface{}{string(p.Type), externalID}, values...)

	query := buildUpsertSQL(table, columns, []string{"property_type", "external_id"}, nil, nil, "")
	_, err = tx.Exec(ctx, query, args...)
	return err
}

func extensionRow(ext domain.Extension) (string, []string, []interface{}, error) {
	switch e := ext.(type) {
	case *domain.Residential:
		details, err := encodeDocument(e.AdditionalDetails)
		if err != nil {
			return "", nil, nil, err
		}
		return "residential_properties",
			[]string{"balcony", "garden", "terrace", "elevator", "cellar", "parking_spaces", "pet_friendly", "barrier_free", "furnished", "additional_details"},
			[]interface{}{e.Balcony, e.Garden, e.Terrace, e.Elevator, e.Cellar, e.ParkingSpaces, e.PetFriendly, e.BarrierFree, e.Furnished, details},
			nil
	case *domain.Commercial:
		details, err := encodeDocument(e.AdditionalDetails)
		if err != nil {
			return "", nil, nil, err
		}
		return "commercial_properties",
			[]string{"commercial_type", "floor_space", "plot_size", "ceiling_height", "loading_docks", "office_space", "storage_space", "additional_details"},
			[]interface{}{e.CommercialType, e.FloorSpace, e.PlotSize, e.CeilingHeight, e.LoadingDocks, e.OfficeSpace, e.StorageSpace, details},
			nil
	case *domain.LandPlot:
		details, err := encodeDocument(e.AdditionalDetails)
		if err != nil {
			return "", nil, nil, err
		}
		return "land_properties",
			[]string{"plot_size", "development_type", "building_density", "floor_space_ratio", "additional_details"},
			[]interface{}{e.PlotSize, e.DevelopmentType, e.BuildingDensity, e.FloorSpaceRatio, details},
			nil
	case *domain.ParkingSpot:
		security, err := encodeDocument(e.SecurityFeatures)
		if err != nil {
			return "", nil, nil, err
		}
		details, err := encodeDocument(e.AdditionalDetails)
		if err != nil {
			return "", nil, nil, err
		}
		return "parking_properties",
			[]string{"parking_type", "covered", "security_features", "additional_details"},
			[]interface{}{e.ParkingType, e.Covered, security, details},
			nil
	default:
		return "", nil, nil, fmt.Errorf("unknown extension type %T", ext)
	}
}

var _ port.ListingSinkPort = (*PartitionStore)(nil)
var _ port.PartitionStorePort = (*PartitionStore)(nil)
