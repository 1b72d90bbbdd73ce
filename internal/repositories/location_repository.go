package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"amora-service/internal/models"
)

// LocationRepository is the proximity index over last-known coordinates.
// Each update overwrites the previous point; no history is kept.
type LocationRepository interface {
	UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lon float64) error
	FindNearby(ctx context.Context, lat, lon, radiusKM float64) ([]models.NearbyUser, error)
}

// LocationRepo is a sqlx implementation of LocationRepository.
type LocationRepo struct {
	db *sqlx.DB
}

// NewLocationRepo constructs a LocationRepo.
func NewLocationRepo(db *sqlx.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// UpdateLocation overwrites the user's last-known point.
func (r *LocationRepo) UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lon float64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_locations (user_id, latitude, longitude, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id) DO UPDATE SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = NOW()`,
		userID, lat, lon)
	return err
}

// FindNearby returns users within radiusKM great-circle kilometers of the
// query point, closest first. Haversine on a 6371 km sphere; users without
// a recorded location have no row and are naturally excluded.
func (r *LocationRepo) FindNearby(ctx context.Context, lat, lon, radiusKM float64) ([]models.NearbyUser, error) {
	query := `SELECT id, name, username, avatar_url, latitude, longitude, distance_km FROM (
            SELECT u.id, u.name, u.username, u.avatar_url, l.latitude, l.longitude,
                6371 * 2 * asin(sqrt(
                    power(sin(radians(l.latitude - $1) / 2), 2) +
                    cos(radians($1)) * cos(radians(l.latitude)) *
                    power(sin(radians(l.longitude - $2) / 2), 2)
                )) AS distance_km
            FROM user_locations l
            JOIN users u ON u.id = l.user_id
        ) nearby
        WHERE distance_km <= $3
        ORDER BY distance_km ASC`

	var users []models.NearbyUser
	err := r.db.SelectContext(ctx, &users, query, lat, lon, radiusKM)
	return users, err
}
