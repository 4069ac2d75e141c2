package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
)

// PartitionStore реализует PartitionStorePort и ListingSinkPort поверх PostgreSQL.
// Каждая партиция - отдельная таблица, имя берется только из реестра domain.
type PartitionStore struct {
	pool *pgxpool.Pool
}

func NewPartitionStore(pool *pgxpool.Pool) (*PartitionStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PartitionStore{pool: pool}, nil
}

func tableName(p domain.Partition) string {
	return pgx.Identifier{p.Table}.Sanitize()
}

func (s *PartitionStore) logger(ctx context.Context, method string, p domain.Partition) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresPartitionStore",
		"method":    method,
		"partition": p.Table,
	})
}

// PartitionStats считает количество и средние одним запросом. COUNT(col) дает число непустых значений.
func (s *PartitionStore) PartitionStats(ctx context.Context, p domain.Partition) (domain.PartitionStats, error) {
	repoLogger := s.logger(ctx, "PartitionStats", p)

	query := fmt.Sprintf(`
		SELECT COUNT(*),
			AVG(price)::float8, AVG(size)::float8, AVG(rooms)::float8,
			COUNT(price), COUNT(size), COUNT(rooms)
		FROM %s`, tableName(p))

	var res domain.PartitionStats
	err := s.pool.QueryRow(ctx, query).Scan(
		&res.Count,
		&res.AvgPrice, &res.AvgSize, &res.AvgRooms,
		&res.PriceCount, &res.SizeCount, &res.RoomsCount,
	)
	if err != nil {
		repoLogger.Error("Failed to query partition stats", err, port.Fields{"query": query})
		return domain.PartitionStats{}, fmt.Errorf("failed to get stats for %s: %w", p.Table, err)
	}

	repoLogger.Debug("Partition stats fetched", port.Fields{"count": res.Count})
	return res, nil
}

// MonthlyAveragePrice группирует по месяцу в UTC, чтобы метки совпадали между партициями
func (s *PartitionStore) MonthlyAveragePrice(ctx context.Context, p domain.Partition, since time.Time) ([]domain.MonthlyAverage, error) {
	repoLogger := s.logger(ctx, "MonthlyAveragePrice", p)

	query := fmt.Sprintf(`
		SELECT to_char(DATE_TRUNC('month', created_at AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
			AVG(price)::float8
		FROM %s
		WHERE created_at > $1
		GROUP BY month
		ORDER BY month`, tableName(p))

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		repoLogger.Error("Failed to query monthly averages", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to get price trend for %s: %w", p.Table, err)
	}
	defer rows.Close()

	out := make([]domain.MonthlyAverage, 0)
	for rows.Next() {
		var m domain.MonthlyAverage
		if err := rows.Scan(&m.Month, &m.AvgPrice); err != nil {
			repoLogger.Error("Failed to scan monthly average row", err, nil)
			return nil, fmt.Errorf("failed to scan price trend row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during monthly averages iteration", err, nil)
		return nil, fmt.Errorf("failed to iterate price trend rows: %w", err)
	}
	return out, nil
}

func (s *PartitionStore) AddressCounts(ctx context.Context, p domain.Partition) ([]domain.AddressCount, error) {
	repoLogger := s.logger(ctx, "AddressCounts", p)

	query := fmt.Sprintf(`SELECT address, COUNT(*) FROM %s GROUP BY address`, tableName(p))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		repoLogger.Error("Failed to query address counts", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to get address counts for %s: %w", p.Table, err)
	}
	defer rows.Close()

	out := make([]domain.AddressCount, 0)
	for rows.Next() {
		var ac domain.AddressCount
		if err := rows.Scan(&ac.Address, &ac.Count); err != nil {
			repoLogger.Error("Failed to scan address count row", err, nil)
			return nil, fmt.Errorf("failed to scan address count row: %w", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during address counts iteration", err, nil)
		return nil, fmt.Errorf("failed to iterate address count rows: %w", err)
	}
	return out, nil
}

// FindListings отдает строки в порядке id, то есть в порядке вставки
func (s *PartitionStore) FindListings(ctx context.Context, p domain.Partition, pred domain.Predicate) ([]domain.ListingRow, error) {
	repoLogger := s.logger(ctx, "FindListings", p)

	whereClause, args, err := applyPredicate(pred)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter for %s: %w", p.Table, err)
	}

	query := fmt.Sprintf(`
		SELECT id, external_id, title, price::float8, size::float8, rooms::float8, address, url, created_at
		FROM %s
		%s
		ORDER BY id`, tableName(p), whereClause)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query listings", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to find listings in %s: %w", p.Table, err)
	}
	defer rows.Close()

	out := make([]domain.ListingRow, 0)
	for rows.Next() {
		var r domain.ListingRow
		if err := rows.Scan(&r.ID, &r.ExternalID, &r.Title, &r.Price, &r.Size, &r.Rooms, &r.Address, &r.URL, &r.CreatedAt); err != nil {
			repoLogger.Error("Failed to scan listing row", err, nil)
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during listings iteration", err, nil)
		return nil, fmt.Errorf("failed to iterate listing rows: %w", err)
	}

	repoLogger.Debug("Listings fetched", port.Fields{"count": len(out)})
	return out, nil
}

// GetListing читает базовую запись и, если есть, ее расширение
func (s *PartitionStore) GetListing(ctx context.Context, p domain.Partition, externalID string) (*domain.Listing, error) {
	repoLogger := s.logger(ctx, "GetListing", p).WithFields(port.Fields{"external_id": externalID})

	query := fmt.Sprintf(`
		SELECT id, external_id, property_type, title, description, address, city, district, postal_code,
			price::float8, price_per_sqm::float8, size::float8, rooms::float8,
			bedrooms, bathrooms, floor_number, year_built,
			condition, heating_type, energy_rating, property_style, availability,
			latitude, longitude,
			features, equipment, energy_certificate, other_costs, contact_info, search_parameters,
			url, source, created_at, updated_at
		FROM %s
		WHERE external_id = $1`, tableName(p))

	var (
		prop     domain.Property
		propType string
		lat, lon *float64
		docs     [6][]byte
	)
	err := s.pool.QueryRow(ctx, query, externalID).Scan(
		&prop.ID, &prop.ExternalID, &propType, &prop.Title, &prop.Description, &prop.Address, &prop.City, &prop.District, &prop.PostalCode,
		&prop.Price, &prop.PricePerSqm, &prop.Size, &prop.Rooms,
		&prop.Bedrooms, &prop.Bathrooms, &prop.FloorNumber, &prop.YearBuilt,
		&prop.Condition, &prop.HeatingType, &prop.EnergyRating, &prop.PropertyStyle, &prop.Availability,
		&lat, &lon,
		&docs[0], &docs[1], &docs[2], &docs[3], &docs[4], &docs[5],
		&prop.URL, &prop.Source, &prop.CreatedAt, &prop.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Listing not found", nil)
			return nil, domain.ErrListingNotFound
		}
		repoLogger.Error("Failed to query listing", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to get listing from %s: %w", p.Table, err)
	}

	prop.PropertyType = domain.PropertyType(propType)
	if lat != nil && lon != nil {
		prop.Location = &orb.Point{*lon, *lat}
	}

	targets := []*map[string]any{
		&prop.Features, &prop.Equipment, &prop.EnergyCertificate,
		&prop.OtherCosts, &prop.ContactInfo, &prop.SearchParameters,
	}
	for i, raw := range docs {
		if *targets[i], err = decodeDocument(raw); err != nil {
			return nil, fmt.Errorf("failed to decode listing %s: %w", externalID, err)
		}
	}

	ext, err := s.getExtension(ctx, p, externalID)
	if err != nil {
		repoLogger.Error("Failed to query listing extension", err, nil)
		return nil, fmt.Errorf("failed to get extension from %s: %w", p.Table, err)
	}

	return &domain.Listing{Property: prop, Extension: ext}, nil
}

func (s *PartitionStore) getExtension(ctx context.Context, p domain.Partition, externalID string) (domain.Extension, error) {
	var (
		ext domain.Extension
		err error
	)
	pt := string(p.Type)

	switch p.Extension {
	case domain.ExtensionResidential:
		r := &domain.Residential{}
		var details []byte
		err = s.pool.QueryRow(ctx, `
			SELECT balcony, garden, terrace, elevator, cellar, parking_spaces, pet_friendly, barrier_free, furnished, additional_details
			FROM residential_properties WHERE property_type = $1 AND external_id = $2`, pt, externalID,
		).Scan(&r.Balcony, &r.Garden, &r.Terrace, &r.Elevator, &r.Cellar, &r.ParkingSpaces, &r.PetFriendly, &r.BarrierFree, &r.Furnished, &details)
		if err == nil {
			r.AdditionalDetails, err = decodeDocument(details)
		}
		ext = r
	case domain.ExtensionCommercial:
		c := &domain.Commercial{}
		var details []byte
		err = s.pool.QueryRow(ctx, `
			SELECT commercial_type, floor_space::float8, plot_size::float8, ceiling_height::float8, loading_docks,
				office_space::float8, storage_space::float8, additional_details
			FROM commercial_properties WHERE property_type = $1 AND external_id = $2`, pt, externalID,
		).Scan(&c.CommercialType, &c.FloorSpace, &c.PlotSize, &c.CeilingHeight, &c.LoadingDocks, &c.OfficeSpace, &c.StorageSpace, &details)
		if err == nil {
			c.AdditionalDetails, err = decodeDocument(details)
		}
		ext = c
	case domain.ExtensionLand:
		l := &domain.LandPlot{}
		var details []byte
		err = s.pool.QueryRow(ctx, `
			SELECT plot_size::float8, development_type, building_density::float8, floor_space_ratio::float8, additional_details
			FROM land_properties WHERE property_type = $1 AND external_id = $2`, pt, externalID,
		).Scan(&l.PlotSize, &l.DevelopmentType, &l.BuildingDensity, &l.FloorSpaceRatio, &details)
		if err == nil {
			l.AdditionalDetails, err = decodeDocument(details)
		}
		ext = l
	case domain.ExtensionParking:
		pk := &domain.ParkingSpot{}
		var security, details []byte
		err = s.pool.QueryRow(ctx, `
			SELECT parking_type, covered, security_features, additional_details
			FROM parking_properties WHERE property_type = $1 AND external_id = $2`, pt, externalID,
		).Scan(&pk.ParkingType, &pk.Covered, &security, &details)
		if err == nil {
			if pk.SecurityFeatures, err = decodeDocument(security); err == nil {
				pk.AdditionalDetails, err = decodeDocument(details)
			}
		}
		ext = pk
	default:
		return nil, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ext, nil
}

// decodeDocument: NULL в JSONB дает nil-карту
func decodeDocument(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// encodeDocument: nil-карта пишется как NULL
func encodeDocument(doc map[string]any) ([]byte, error) {
	if doc == nil {
		return nil, nil
	}
	return json.Marshal(doc)
}
