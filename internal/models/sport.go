package models

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const (
	SportRunning = iota
	SportBiking
	SportOther
	SportOrienteering
	SportWalking
)

var sportNames = map[int]string{
	SportRunning:      "Running",
	SportBiking:       "Biking",
	SportOther:        "Other",
	SportOrienteering: "Orienteering",
	SportWalking:      "Walking",
}

// SportName returns the English name for a sport code. Unknown codes map to "Other".
func SportName(code int) string {
	if name, ok := sportNames[code]; ok {
		return name
	}
	return sportNames[SportOther]
}
