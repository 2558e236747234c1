package proposaldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"spotmerge.hitchmap.org/internal/models"
)

// SpotRepository is the SQLite-backed spot repository, used by the batch
// binary and by deployments that keep spots next to the proposals.
type SpotRepository struct {
	client *Client
}

func NewSpotRepository(client *Client) *SpotRepository {
	return &SpotRepository{client: client}
}

type spotRow struct {
	ID               string
	Lat              sql.NullFloat64
	Lon              sql.NullFloat64
	OriginLabel      string
	DestinationLabel string
	RatingsJSON      string
	ReviewCount      int64
	Description      string
	PhotoURL         string
	CheckinCount     int64
	CreatedAt        int64
	LastUsedAt       int64
	Verified         int64
	Region           string
	Source           string
}

const spotColumns = `id, lat, lon, origin_label, destination_label, ratings_json,
    review_count, description, photo_url, checkin_count, created_at,
    last_used_at, verified, region, source`

func scanSpotRow(scanner interface{ Scan(...any) error }) (spotRow, error) {
	var row spotRow
	err := scanner.Scan(
		&row.ID,
		&row.Lat,
		&row.Lon,
		&row.OriginLabel,
		&row.DestinationLabel,
		&row.RatingsJSON,
		&row.ReviewCount,
		&row.Description,
		&row.PhotoURL,
		&row.CheckinCount,
		&row.CreatedAt,
		&row.LastUsedAt,
		&row.Verified,
		&row.Region,
		&row.Source,
	)
	return row, err
}

func (row spotRow) toModel() (models.Spot, error) {
	spot := models.Spot{
		ID:               row.ID,
		OriginLabel:      row.OriginLabel,
		DestinationLabel: row.DestinationLabel,
		ReviewCount:      int(row.ReviewCount),
		Description:      row.Description,
		PhotoURL:         row.PhotoURL,
		CheckinCount:     int(row.CheckinCount),
		CreatedAt:        millisToTime(row.CreatedAt),
		LastUsedAt:       millisToTime(row.LastUsedAt),
		Verified:         row.Verified != 0,
		Region:           row.Region,
		Source:           row.Source,
	}
	if row.Lat.Valid && row.Lon.Valid {
		spot.Coordinate = &models.Coordinate{Lat: row.Lat.Float64, Lon: row.Lon.Float64}
	}
	if row.RatingsJSON != "" {
		if err := json.Unmarshal([]byte(row.RatingsJSON), &spot.Ratings); err != nil {
			return models.Spot{}, fmt.Errorf("decoding ratings for spot %s: %w", row.ID, err)
		}
	}
	return spot, nil
}

func spotArgs(spot models.Spot) ([]any, error) {
	var lat, lon sql.NullFloat64
	if spot.HasCoordinates() {
		lat = sql.NullFloat64{Float64: spot.Coordinate.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: spot.Coordinate.Lon, Valid: true}
	}
	ratingsJSON := ""
	if len(spot.Ratings) > 0 {
		encoded, err := json.Marshal(spot.Ratings)
		if err != nil {
			return nil, fmt.Errorf("encoding ratings for spot %s: %w", spot.ID, err)
		}
		ratingsJSON = string(encoded)
	}
	verified := int64(0)
	if spot.Verified {
		verified = 1
	}
	return []any{
		spot.ID, lat, lon, spot.OriginLabel, spot.DestinationLabel, ratingsJSON,
		spot.ReviewCount, spot.Description, spot.PhotoURL, spot.CheckinCount,
		timeToMillis(spot.CreatedAt), timeToMillis(spot.LastUsedAt),
		verified, spot.Region, spot.Source,
	}, nil
}

// Put inserts or overwrites a spot. Seeding entry point, not part of the
// repository interface the merge core consumes.
func (r *SpotRepository) Put(ctx context.Context, spot models.Spot) error {
	args, err := spotArgs(spot)
	if err != nil {
		return err
	}
	_, err = r.client.DB.ExecContext(ctx, `
INSERT OR REPLACE INTO spots (`+spotColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("storing spot %s: %w", spot.ID, err)
	}
	return nil
}

func (r *SpotRepository) GetByID(ctx context.Context, id string) (models.Spot, bool, error) {
	row, err := scanSpotRow(r.client.DB.QueryRowContext(ctx,
		`SELECT `+spotColumns+` FROM spots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Spot{}, false, nil
	}
	if err != nil {
		return models.Spot{}, false, fmt.Errorf("loading spot %s: %w", id, err)
	}
	spot, err := row.toModel()
	if err != nil {
		return models.Spot{}, false, err
	}
	return spot, true, nil
}

// List returns all spots ordered by id so sweeps see a stable input order.
func (r *SpotRepository) List(ctx context.Context) ([]models.Spot, error) {
	rows, err := r.client.DB.QueryContext(ctx, `SELECT `+spotColumns+` FROM spots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing spots: %w", err)
	}
	defer rows.Close()

	out := []models.Spot{}
	for rows.Next() {
		row, err := scanSpotRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		spot, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, spot)
	}
	return out, rows.Err()
}

func (r *SpotRepository) Replace(ctx context.Context, id string, spot models.Spot) error {
	args, err := spotArgs(spot)
	if err != nil {
		return err
	}
	// Strip the leading id argument; the WHERE clause carries it.
	res, err := r.client.DB.ExecContext(ctx, `
UPDATE spots SET lat = ?, lon = ?, origin_label = ?, destination_label = ?, ratings_json = ?,
    review_count = ?, description = ?, photo_url = ?, checkin_count = ?, created_at = ?,
    last_used_at = ?, verified = ?, region = ?, source = ?
WHERE id = ?`, append(args[1:], id)...)
	if err != nil {
		return fmt.Errorf("replacing spot %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replacing spot %s: %w", id, err)
	}
	if affected == 0 {
		return models.ErrSpotNotFound
	}
	return nil
}

func (r *SpotRepository) Remove(ctx context.Context, id string) error {
	res, err := r.client.DB.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing spot %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing spot %s: %w", id, err)
	}
	if affected == 0 {
		return models.ErrSpotNotFound
	}
	return nil
}

// ReplaceAndRemove commits the survivor rewrite and the absorbed removal in
// one transaction.
func (r *SpotRepository) ReplaceAndRemove(ctx context.Context, survivorID string, survivor models.Spot, absorbedID string) error {
	args, err := spotArgs(survivor)
	if err != nil {
		return err
	}

	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE spots SET lat = ?, lon = ?, origin_label = ?, destination_label = ?, ratings_json = ?,
    review_count = ?, description = ?, photo_url = ?, checkin_count = ?, created_at = ?,
    last_used_at = ?, verified = ?, region = ?, source = ?
WHERE id = ?`, append(args[1:], survivorID)...)
	if err != nil {
		return fmt.Errorf("replacing spot %s: %w", survivorID, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("replacing spot %s: %w", survivorID, err)
	} else if affected == 0 {
		return models.ErrSpotNotFound
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, absorbedID)
	if err != nil {
		return fmt.Errorf("removing spot %s: %w", absorbedID, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("removing spot %s: %w", absorbedID, err)
	} else if affected == 0 {
		return models.ErrSpotNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
