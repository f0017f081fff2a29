package trip

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save stores a trip record.
func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO trips (
			trip_id, user_id, origin, destination,
			origin_lat, origin_lon, dest_lat, dest_lon,
			starting_charge_pct, vehicle_id, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Origin,
		rec.Destination,
		rec.OriginLat,
		rec.OriginLon,
		rec.DestLat,
		rec.DestLon,
		rec.StartingChargePct,
		rec.VehicleID,
		rec.Payload,
		rec.CreatedAt,
	)
	return err
}

// ListByUser returns a user's trips, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	query := `
		SELECT
			trip_id, user_id, origin, destination,
			origin_lat, origin_lon, dest_lat, dest_lon,
			starting_charge_pct, vehicle_id, payload, created_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Origin,
			&rec.Destination,
			&rec.OriginLat,
			&rec.OriginLon,
			&rec.DestLat,
			&rec.DestLon,
			&rec.StartingChargePct,
			&rec.VehicleID,
			&rec.Payload,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
