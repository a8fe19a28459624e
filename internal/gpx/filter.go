package gpx

// pointFilter suppresses one GPS artifact only: a sample with the same timestamp and
// latitude as the last kept point but a different longitude. Exact duplicates and all
// other changes are kept; this is not general deduplication.
type pointFilter struct {
	time int64
	lat  float64
	lon  float64
}

// reset clears the last kept point at the start of a segment.
func (f *pointFilter) reset() {
	*f = pointFilter{}
}

// keep reports whether the candidate should be written and, if so, remembers it.
func (f *pointFilter) keep(time int64, lat, lon float64) bool {
	if time == f.time && lat == f.lat && lon != f.lon {
		return false
	}
	f.time, f.lat, f.lon = time, lat, lon
	return true
}
