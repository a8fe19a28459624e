package models

import "strings"

// WithBarometer is the meta_data marker set when a recording used a barometric sensor.
const WithBarometer = "barometer"

type Activity struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	Comment   *string `json:"comment,omitempty"`
	StartTime int64   `json:"start_time"` // epoch seconds
	Sport     *int    `json:"sport,omitempty"`
	MetaData  *string `json:"meta_data,omitempty"`
}

// WithBarometer reports whether the activity was recorded with barometric altitude.
func (a Activity) WithBarometer() bool {
	return a.MetaData != nil && strings.Contains(*a.MetaData, WithBarometer)
}

type Lap struct {
	ID        int64   `json:"lap"`
	Distance  float64 `json:"distance"` // meters
	Duration  int64   `json:"time"`     // seconds
	Intensity int     `json:"intensity"`
}

// IsMotion reports whether the lap recorded both distance and time.
func (l Lap) IsMotion() bool {
	return l.Distance > 0 && l.Duration > 0
}

// IsRest reports whether the lap recorded neither distance nor time.
func (l Lap) IsRest() bool {
	return l.Distance == 0 && l.Duration == 0
}
