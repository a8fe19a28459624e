package gpx

import "time"

const timeLayout = "2006-01-02T15:04:05Z"

// FormatTime renders epoch milliseconds as a UTC GPX timestamp, e.g. 2013-04-01T10:00:00Z.
func FormatTime(epochMillis int64) string {
	return time.UnixMilli(epochMillis).UTC().Format(timeLayout)
}
