// Package profiles persists customer profile records, including the address
// fields staff geocode for service area planning.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plumbing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileNotFoundMsg = "Profile not found"

// Profile is the database model for a user profile.
type Profile struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Role            string    `db:"role"`
	Name            *string   `db:"name"`
	Phone           *string   `db:"phone"`
	Address         *string   `db:"address"`
	City            *string   `db:"city"`
	Province        *string   `db:"province"`
	PostalCode      *string   `db:"postal_code"`
	Latitude        *float64  `db:"latitude"`
	Longitude       *float64  `db:"longitude"`
	GeocodedAddress *string   `db:"geocoded_address"`
}

// FullAddress joins the profile's address parts into a geocodable string.
// Empty when no address is on file.
func (p *Profile) FullAddress() string {
	if p.Address == nil {
		return ""
	}
	parts := []string{*p.Address}
	if p.City != nil && *p.City != "" {
		parts = append(parts, *p.City)
	}
	region := ""
	if p.Province != nil {
		region = *p.Province
	}
	if p.PostalCode != nil && *p.PostalCode != "" {
		region = strings.TrimSpace(region + " " + *p.PostalCode)
	}
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}

// Repository provides access to user profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a profiles repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a single profile.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, user_id, role, name, phone, address, city, province, postal_code,
		       latitude, longitude, geocoded_address
		FROM user_profiles
		WHERE id = $1`

	var p Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Role, &p.Name, &p.Phone,
		&p.Address, &p.City, &p.Province, &p.PostalCode,
		&p.Latitude, &p.Longitude, &p.GeocodedAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(profileNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &p, nil
}

// SaveGeocode writes resolved coordinates onto a profile.
func (r *Repository) SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error {
	query := `
		UPDATE user_profiles
		SET latitude = $2, longitude = $3, geocoded_address = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, lat, lng, formattedAddress)
	if err != nil {
		return fmt.Errorf("failed to save profile geocode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMsg)
	}
	return nil
}

// AdminPhoneNumbers returns the distinct phone numbers of admin profiles.
func (r *Repository) AdminPhoneNumbers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT phone
		FROM user_profiles
		WHERE role = 'admin' AND phone IS NOT NULL
		ORDER BY phone`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin phones: %w", err)
	}
	defer rows.Close()

	phones := make([]string, 0)
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("failed to scan admin phone: %w", err)
		}
		phones = append(phones, phone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin phones: %w", err)
	}

	return phones, nil
}
