package models

// Location is one position sample. Sensor fields are nil when the sample carries no value.
type Location struct {
	LapID       int64    `json:"lap"`
	Time        int64    `json:"time"` // epoch millis
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Altitude    *float64 `json:"altitude,omitempty"`
	GPSAltitude *float64 `json:"gps_altitude,omitempty"`
	HeartRate   *int     `json:"hr,omitempty"`
	Cadence     *float64 `json:"cadence,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Bearing     *float64 `json:"bearing,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Satellites  *int     `json:"satellites,omitempty"`
	Type        int      `json:"type"`
}

// Cursor is a forward-only, read-only view over stored rows.
// Callers must Close it on every path.
type Cursor[T any] interface {
	Next() bool
	Value() T
	Err() error
	Close() error
}
