package gpx

import (
	"strconv"

	"github.com/gratten/lapgpx/internal/models"
)

// Field is one extension element and its rendered value.
type Field struct {
	Name  string
	Value string
}

// FieldSet holds the extension elements of a single track point.
// TrackPoint fields go inside gpxtpx:TrackPointExtension; Private fields are
// direct children of extensions.
type FieldSet struct {
	TrackPoint []Field
	Private    []Field
}

func (f FieldSet) Empty() bool {
	return len(f.TrackPoint) == 0 && len(f.Private) == 0
}

// ExtensionFields computes the extension elements present on loc. Pressure,
// accuracy, bearing, speed and satellite count are only included in private mode.
func ExtensionFields(loc models.Location, private bool) FieldSet {
	var set FieldSet
	if loc.HeartRate != nil {
		set.TrackPoint = append(set.TrackPoint, Field{"gpxtpx:hr", strconv.Itoa(*loc.HeartRate)})
	}
	set.TrackPoint = appendFloat(set.TrackPoint, "gpxtpx:cad", loc.Cadence)
	set.TrackPoint = appendFloat(set.TrackPoint, "gpxtpx:atemp", loc.Temperature)
	if !private {
		return set
	}

	set.Private = appendFloat(set.Private, "pressure", loc.Pressure)
	set.Private = appendFloat(set.Private, "accuracy", loc.Accuracy)
	set.Private = appendFloat(set.Private, "bearing", loc.Bearing)
	set.Private = appendFloat(set.Private, "speed", loc.Speed)
	if loc.Satellites != nil {
		set.Private = append(set.Private, Field{"sat", strconv.Itoa(*loc.Satellites)})
	}
	return set
}

// Elevation picks the value written as ele. Private mode prefers the GPS altitude
// and falls back to the standard altitude; public mode only uses the standard one.
func Elevation(loc models.Location, private bool) *float64 {
	if private && loc.GPSAltitude != nil {
		return loc.GPSAltitude
	}
	return loc.Altitude
}

func (f FieldSet) write(x *xmlw) {
	if f.Empty() {
		return
	}
	x.start("extensions")
	if len(f.TrackPoint) > 0 {
		x.start("gpxtpx:TrackPointExtension")
		for _, field := range f.TrackPoint {
			x.elem(field.Name, field.Value)
		}
		x.end("gpxtpx:TrackPointExtension")
	}
	for _, field := range f.Private {
		x.elem(field.Name, field.Value)
	}
	x.end("extensions")
}

func appendFloat(fields []Field, name string, v *float64) []Field {
	if v == nil {
		return fields
	}
	return append(fields, Field{name, formatFloat(*v)})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
