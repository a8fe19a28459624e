package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gratten/lapgpx/internal/models"
)

const locationColumns = `lap, time, latitude, longitude, altitude, gps_altitude, hr, cadence,
    temperature, pressure, accuracy, bearing, speed, satellites, type`

// rowCursor adapts *sql.Rows to models.Cursor.
type rowCursor[T any] struct {
	rows *sql.Rows
	scan func(scanner) (T, error)
	cur  T
	err  error
}

func (c *rowCursor[T]) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	v, err := c.scan(c.rows)
	if err != nil {
		c.err = err
		return false
	}
	c.cur = v
	return true
}

func (c *rowCursor[T]) Value() T { return c.cur }

func (c *rowCursor[T]) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowCursor[T]) Close() error { return c.rows.Close() }

// Laps opens a cursor over an activity's laps ordered by lap index.
// Unless includeRest is set, laps without distance and time are left out.
func (s *Store) Laps(ctx context.Context, activityID int64, includeRest bool) (models.Cursor[models.Lap], error) {
	query := `SELECT lap, distance, time, intensity FROM lap WHERE activity_id = ?`
	if !includeRest {
		query += ` AND (distance > 0 OR time > 0)`
	}
	query += ` ORDER BY lap ASC`

	rows, err := s.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query laps: %w", err)
	}
	return &rowCursor[models.Lap]{rows: rows, scan: scanLap}, nil
}

// Locations opens a cursor over an activity's locations in insertion order.
func (s *Store) Locations(ctx context.Context, activityID int64) (models.Cursor[models.Location], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM location WHERE activity_id = ? ORDER BY _id ASC`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	return &rowCursor[models.Location]{rows: rows, scan: scanLocation}, nil
}

// LastLocation returns the last stored location of a lap, or nil if the lap has none.
func (s *Store) LastLocation(ctx context.Context, activityID, lapID int64) (*models.Location, error) {
	return s.boundaryLocation(ctx, activityID, lapID, "DESC")
}

// FirstLocation returns the first stored location of a lap, or nil if the lap has none.
func (s *Store) FirstLocation(ctx context.Context, activityID, lapID int64) (*models.Location, error) {
	return s.boundaryLocation(ctx, activityID, lapID, "ASC")
}

func (s *Store) boundaryLocation(ctx context.Context, activityID, lapID int64, order string) (*models.Location, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM location WHERE activity_id = ? AND lap = ? ORDER BY _id `+order+` LIMIT 1`,
		activityID, lapID)
	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get location of lap %d: %w", lapID, err)
	}
	return &loc, nil
}

func scanLap(row scanner) (models.Lap, error) {
	var lap models.Lap
	err := row.Scan(&lap.ID, &lap.Distance, &lap.Duration, &lap.Intensity)
	return lap, err
}

func scanLocation(row scanner) (models.Location, error) {
	var loc models.Location
	err := row.Scan(&loc.LapID, &loc.Time, &loc.Latitude, &loc.Longitude, &loc.Altitude,
		&loc.GPSAltitude, &loc.HeartRate, &loc.Cadence, &loc.Temperature, &loc.Pressure,
		&loc.Accuracy, &loc.Bearing, &loc.Speed, &loc.Satellites, &loc.Type)
	return loc, err
}
