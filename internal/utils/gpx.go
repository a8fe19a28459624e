package utils

import (
	"strings"
)

// ExportFilename builds a default file name for an exported document from the
// start time returned by the exporter, e.g. "OwnPath-2013-04-01T08-05-09Z.gpx".
// Colons are replaced so the name is valid on every filesystem.
func ExportFilename(prefix, startTime string) string {
	name := strings.ReplaceAll(startTime, ":", "-")
	if prefix != "" {
		name = prefix + "-" + name
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, name) + ".gpx"
}
