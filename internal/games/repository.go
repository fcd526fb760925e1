package games

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meeplemeet/backend/internal/models"
)

// Repository handles game catalog persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a games repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a game by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	const q = `SELECT id, name, min_players, max_players, COALESCE(thumbnail_url,''), created_at
		FROM games WHERE id = $1`
	var g models.Game
	err := r.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &g.ThumbnailURL, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByIDs returns the games with the given IDs, keyed by ID.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Game, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Game{}, nil
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	const q = `SELECT id, name, min_players, max_players, COALESCE(thumbnail_url,''), created_at
		FROM games WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, q, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]*models.Game, len(ids))
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &g.ThumbnailURL, &g.CreatedAt); err != nil {
			return nil, err
		}
		out[g.ID] = &g
	}
	return out, rows.Err()
}

// List returns all catalog games ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Game, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, min_players, max_players, COALESCE(thumbnail_url,''), created_at
		FROM games ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.MinPlayers, &g.MaxPlayers, &g.ThumbnailURL, &g.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}
