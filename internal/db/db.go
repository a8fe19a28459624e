package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/gratten/lapgpx/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity (
    _id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    comment TEXT,
    start_time INTEGER NOT NULL,  -- epoch seconds
    sport INTEGER,
    meta_data TEXT                -- flags such as 'barometer'
);
CREATE TABLE IF NOT EXISTS lap (
    _id INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id INTEGER NOT NULL,
    lap INTEGER NOT NULL,         -- lap index within the activity
    distance REAL NOT NULL DEFAULT 0,
    time INTEGER NOT NULL DEFAULT 0,
    intensity INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS location (
    _id INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id INTEGER NOT NULL,
    lap INTEGER NOT NULL,
    time INTEGER NOT NULL,        -- epoch millis
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    altitude REAL,
    gps_altitude REAL,
    hr INTEGER,
    cadence REAL,
    temperature REAL,
    pressure REAL,
    accuracy REAL,
    bearing REAL,
    speed REAL,
    satellites INTEGER,
    type INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS lap_activity ON lap (activity_id, lap);
CREATE INDEX IF NOT EXISTS location_activity ON location (activity_id, lap);`

// Store reads and writes activities, laps and locations in a SQLite database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the database at path, creating the file and schema if needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info("database initialized", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertActivity stores a new activity and returns its id.
func (s *Store) InsertActivity(ctx context.Context, act models.Activity) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (name, comment, start_time, sport, meta_data) VALUES (?, ?, ?, ?, ?)`,
		act.Name, act.Comment, act.StartTime, act.Sport, act.MetaData)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read activity id: %w", err)
	}
	return id, nil
}

// InsertLap stores a lap of an activity.
func (s *Store) InsertLap(ctx context.Context, activityID int64, lap models.Lap) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lap (activity_id, lap, distance, time, intensity) VALUES (?, ?, ?, ?, ?)`,
		activityID, lap.ID, lap.Distance, lap.Duration, lap.Intensity)
	if err != nil {
		return fmt.Errorf("failed to insert lap: %w", err)
	}
	return nil
}

// InsertLocation appends a location sample; row order is the export order.
func (s *Store) InsertLocation(ctx context.Context, activityID int64, loc models.Location) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO location (activity_id, lap, time, latitude, longitude, altitude, gps_altitude, hr,
    cadence, temperature, pressure, accuracy, bearing, speed, satellites, type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activityID, loc.LapID, loc.Time, loc.Latitude, loc.Longitude, loc.Altitude, loc.GPSAltitude,
		loc.HeartRate, loc.Cadence, loc.Temperature, loc.Pressure, loc.Accuracy, loc.Bearing,
		loc.Speed, loc.Satellites, loc.Type)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// ListActivities returns all activities, newest first.
func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT _id, name, comment, start_time, sport, meta_data FROM activity ORDER BY start_time DESC, _id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	return activities, nil
}

// Activity returns a single activity, or an error wrapping models.ErrNotFound.
func (s *Store) Activity(ctx context.Context, id int64) (models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT _id, name, comment, start_time, sport, meta_data FROM activity WHERE _id = ?`, id)
	act, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, fmt.Errorf("activity %d: %w", id, models.ErrNotFound)
	} else if err != nil {
		return models.Activity{}, fmt.Errorf("failed to get activity: %w", err)
	}
	return act, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (models.Activity, error) {
	var act models.Activity
	err := row.Scan(&act.ID, &act.Name, &act.Comment, &act.StartTime, &act.Sport, &act.MetaData)
	return act, err
}
