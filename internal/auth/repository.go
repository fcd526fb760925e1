package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meeplemeet/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, lat, lng,
	COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var lat, lng *float64
	var address, city, country string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &lat, &lng,
		&address, &city, &country, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		u.Location = &models.Location{
			Coordinates: models.Coordinates{Lat: *lat, Lng: *lng},
			Address:     address,
			City:        city,
			Country:     country,
		}
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user. Location is optional.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, loc *models.Location) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, full_name, lat, lng, address, city, country)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''))
		RETURNING ` + userColumns
	var lat, lng *float64
	address, city, country := "", "", ""
	if loc != nil {
		lat, lng = &loc.Lat, &loc.Lng
		address, city, country = loc.Address, loc.City, loc.Country
	}
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, fullName, lat, lng, address, city, country))
}

// UpdateLocation replaces the user's stored home location.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, loc models.Location) error {
	const q = `UPDATE users SET lat = $1, lng = $2, address = NULLIF($3,''), city = NULLIF($4,''), country = NULLIF($5,''), updated_at = NOW()
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, q, loc.Lat, loc.Lng, loc.Address, loc.City, loc.Country, id)
	return err
}
