package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meeplemeet/backend/internal/games"
	"github.com/meeplemeet/backend/internal/models"
)

var (
	// ErrVersionConflict means the activity document changed between read and
	// write-back; the caller should reload and retry.
	ErrVersionConflict = errors.New("activity was modified concurrently")
	// ErrUnresolvedReference means a stored reference (host, game or player)
	// could not be resolved during denormalization. Data-integrity fault.
	ErrUnresolvedReference = errors.New("unresolved entity reference")
)

const activityColumns = `id, created_at, updated_at, host_id, name, game_id,
	min_players, max_players, prereserved_seats, date, deadline,
	lat, lng, COALESCE(address,''), COALESCE(city,''), COALESCE(country,''),
	COALESCE(info,''), COALESCE(picture_url,''), cancelled, registrations, version`

// distanceExpr computes great-circle distance (haversine) in kilometers from
// the observer at ($1, $2) to the activity's stored coordinates, in SQL so
// the database can rank and paginate by it. The computed value is transient
// output only; it is never written back.
const distanceExpr = `(2 * 6371 * asin(sqrt(
	pow(sin(radians(lat - $1) / 2), 2) +
	cos(radians($1)) * cos(radians(lat)) * pow(sin(radians(lng - $2) / 2), 2)
)))`

// Repository is the geo-aware activity store. Reads return fully
// denormalized aggregates (host, game and every registration's player
// resolved); writes replace the whole document under an optimistic version
// check.
type Repository struct {
	pool  *pgxpool.Pool
	games *games.Repository
}

// NewRepository creates an activities repository.
func NewRepository(pool *pgxpool.Pool, gameRepo *games.Repository) *Repository {
	return &Repository{pool: pool, games: gameRepo}
}

// Find returns activities matching the filter, ranked per sort with distance
// to the observer attached, fully denormalized. limit is clamped to at least 1.
func (r *Repository) Find(ctx context.Context, filter Filter, observer models.Coordinates, sort Sort, offset, limit int) ([]*models.Activity, error) {
	args := []any{observer.Lat, observer.Lng}
	conds := []string{"date > NOW()"}
	if filter.AvailableOnly {
		conds = append(conds, "deadline > NOW()", "cancelled = FALSE")
	}
	if filter.NotHostedBy != nil {
		args = append(args, *filter.NotHostedBy)
		conds = append(conds, fmt.Sprintf("host_id <> $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	q := `SELECT ` + activityColumns + `, ` + distanceExpr + ` AS distance_km FROM activities` +
		where + ` ORDER BY ` + sort.orderBy() +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	list, err := r.queryActivities(ctx, q, args, true)
	if err != nil {
		return nil, err
	}
	if err := r.denormalize(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns one denormalized activity. No distance is attached;
// distance is populated only by proximity queries.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	a, err := scanActivity(rows, false)
	if err != nil {
		return nil, err
	}
	rows.Close()
	if err := r.denormalize(ctx, []*models.Activity{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// ListHostedBy returns activities hosted by the user, including those up to
// 24 hours in the past so hosts can review finished meetups.
func (r *Repository) ListHostedBy(ctx context.Context, hostID uuid.UUID) ([]*models.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities
		WHERE host_id = $1 AND date > NOW() - INTERVAL '24 hours'
		ORDER BY date ASC`
	list, err := r.queryActivities(ctx, q, []any{hostID}, false)
	if err != nil {
		return nil, err
	}
	if err := r.denormalize(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListJoinedBy returns activities with an approved, non-cancelled
// registration for the player, with the same 24-hour trailing window.
// Cancelled activities stay visible here so players can see a meetup
// they joined was called off.
func (r *Repository) ListJoinedBy(ctx context.Context, playerID uuid.UUID) ([]*models.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities
		WHERE date > NOW() - INTERVAL '24 hours'
		AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(registrations) AS reg
			WHERE reg->>'player_id' = $1
			AND (reg->>'approved')::boolean
			AND NOT (reg->>'cancelled')::boolean
		)
		ORDER BY date ASC`
	list, err := r.queryActivities(ctx, q, []any{playerID.String()}, false)
	if err != nil {
		return nil, err
	}
	if err := r.denormalize(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// HasApprovedJoinWithHost reports whether the player has ever had an
// approved, non-cancelled registration on any activity of the host. Input to
// the booking policy's first-join heuristic.
func (r *Repository) HasApprovedJoinWithHost(ctx context.Context, playerID, hostID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM activities
		WHERE host_id = $1
		AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(registrations) AS reg
			WHERE reg->>'player_id' = $2
			AND (reg->>'approved')::boolean
			AND NOT (reg->>'cancelled')::boolean
		)
	)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, hostID, playerID.String()).Scan(&exists)
	return exists, err
}

// CreateDocument persists a new activity and assigns its identity.
func (r *Repository) CreateDocument(ctx context.Context, a *models.Activity) error {
	if a.Persisted() {
		return models.ErrAlreadyIdentified
	}
	regs, err := marshalRegistrations(a.Registrations)
	if err != nil {
		return fmt.Errorf("marshal registrations: %w", err)
	}
	const q = `INSERT INTO activities
		(id, host_id, name, game_id, min_players, max_players, prereserved_seats,
		date, deadline, lat, lng, address, city, country, info, picture_url, registrations)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		NULLIF($11,''), NULLIF($12,''), NULLIF($13,''), NULLIF($14,''), NULLIF($15,''), $16)
		RETURNING id, created_at, updated_at, version`
	return r.pool.QueryRow(ctx, q,
		a.HostID, a.Name, a.GameID, a.MinPlayers, a.MaxPlayers, a.PrereservedSeats,
		a.Date, a.Deadline, a.Location.Lat, a.Location.Lng,
		a.Location.Address, a.Location.City, a.Location.Country,
		a.Info, a.PictureURL, regs,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Version)
}

// UpdateDocument replaces the whole activity document. The write succeeds
// only against the version the caller read; a concurrent writer surfaces as
// ErrVersionConflict instead of a silent lost update.
func (r *Repository) UpdateDocument(ctx context.Context, a *models.Activity) error {
	if !a.Persisted() {
		return models.ErrNotIdentified
	}
	regs, err := marshalRegistrations(a.Registrations)
	if err != nil {
		return fmt.Errorf("marshal registrations: %w", err)
	}
	const q = `UPDATE activities SET
		name = $1, game_id = $2, min_players = $3, max_players = $4, prereserved_seats = $5,
		date = $6, deadline = $7, lat = $8, lng = $9,
		address = NULLIF($10,''), city = NULLIF($11,''), country = NULLIF($12,''),
		info = NULLIF($13,''), picture_url = NULLIF($14,''), cancelled = $15,
		registrations = $16, version = version + 1, updated_at = NOW()
		WHERE id = $17 AND version = $18`
	tag, err := r.pool.Exec(ctx, q,
		a.Name, a.GameID, a.MinPlayers, a.MaxPlayers, a.PrereservedSeats,
		a.Date, a.Deadline, a.Location.Lat, a.Location.Lng,
		a.Location.Address, a.Location.City, a.Location.Country,
		a.Info, a.PictureURL, a.Cancelled,
		regs, a.ID, a.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	a.Version++
	return nil
}

// --- decode ---

func (r *Repository) queryActivities(ctx context.Context, q string, args []any, withDistance bool) ([]*models.Activity, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows, withDistance)
		if err != nil {
			// Fail-fast: one undecodable document aborts the whole query.
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanActivity(rows pgx.Rows, withDistance bool) (*models.Activity, error) {
	var a models.Activity
	var regsRaw []byte
	dest := []any{
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.HostID, &a.Name, &a.GameID,
		&a.MinPlayers, &a.MaxPlayers, &a.PrereservedSeats, &a.Date, &a.Deadline,
		&a.Location.Lat, &a.Location.Lng, &a.Location.Address, &a.Location.City, &a.Location.Country,
		&a.Info, &a.PictureURL, &a.Cancelled, &regsRaw, &a.Version,
	}
	if withDistance {
		var dist float64
		dest = append(dest, &dist)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		a.DistanceKm = &dist
	} else {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
	}
	if err := json.Unmarshal(regsRaw, &a.Registrations); err != nil {
		return nil, fmt.Errorf("activity %s: decode registrations: %w", a.ID, err)
	}
	for i, reg := range a.Registrations {
		if reg.PlayerID == uuid.Nil {
			return nil, fmt.Errorf("activity %s: registration %d: missing player_id", a.ID, i)
		}
		if reg.Seats < 1 {
			return nil, fmt.Errorf("activity %s: registration %d: missing seats", a.ID, i)
		}
		if reg.CreatedAt.IsZero() {
			return nil, fmt.Errorf("activity %s: registration %d: missing created_at", a.ID, i)
		}
	}
	return &a, nil
}

func marshalRegistrations(regs []models.Registration) ([]byte, error) {
	// Strip denormalized players before persisting; only references are stored.
	stored := make([]models.Registration, len(regs))
	for i, reg := range regs {
		reg.Player = nil
		stored[i] = reg
	}
	return json.Marshal(stored)
}

// --- denormalization ---

// denormalize resolves host, game and per-registration player references to
// full entities via batched lookups. The store cannot join the player list
// into the geo query, so this is a second round trip by design. Any
// unresolvable reference fails the whole read; a registration without its
// player is a data-integrity fault, never a silent drop.
func (r *Repository) denormalize(ctx context.Context, list []*models.Activity) error {
	if len(list) == 0 {
		return nil
	}

	userIDs := make(map[uuid.UUID]struct{})
	gameIDs := make(map[uuid.UUID]struct{})
	for _, a := range list {
		userIDs[a.HostID] = struct{}{}
		if a.GameID != nil {
			gameIDs[*a.GameID] = struct{}{}
		}
		for _, reg := range a.Registrations {
			userIDs[reg.PlayerID] = struct{}{}
		}
	}

	users, err := r.usersByIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	gamesByID, err := r.games.GetByIDs(ctx, keys(gameIDs))
	if err != nil {
		return err
	}

	for _, a := range list {
		host, ok := users[a.HostID]
		if !ok {
			return fmt.Errorf("activity %s: host %s: %w", a.ID, a.HostID, ErrUnresolvedReference)
		}
		a.Host = host
		if a.GameID != nil {
			g, ok := gamesByID[*a.GameID]
			if !ok {
				return fmt.Errorf("activity %s: game %s: %w", a.ID, *a.GameID, ErrUnresolvedReference)
			}
			a.Game = g
		}
		for i := range a.Registrations {
			player, ok := users[a.Registrations[i].PlayerID]
			if !ok {
				return fmt.Errorf("activity %s: registration player %s: %w", a.ID, a.Registrations[i].PlayerID, ErrUnresolvedReference)
			}
			a.Registrations[i].Player = player
		}
	}
	return nil
}

func (r *Repository) usersByIDs(ctx context.Context, ids map[uuid.UUID]struct{}) (map[uuid.UUID]*models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.User{}, nil
	}
	strs := make([]string, 0, len(ids))
	for id := range ids {
		strs = append(strs, id.String())
	}
	const q = `SELECT id, email, full_name, lat, lng,
		COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), created_at, updated_at
		FROM users WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, q, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]*models.User, len(ids))
	for rows.Next() {
		var u models.User
		var lat, lng *float64
		var address, city, country string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &lat, &lng, &address, &city, &country, &u.CreatedAt, &u.UpdatedAt); err != nil {
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
		out[u.ID] = &u
	}
	return out, rows.Err()
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
