// Package gpx renders a recorded activity as a GPX 1.1 document.
package gpx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gratten/lapgpx/internal/models"
)

const (
	nsGPX                 = "http://www.topografix.com/GPX/1/1"
	nsXSI                 = "http://www.w3.org/2001/XMLSchema-instance"
	nsTrackPointExtension = "http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
	schemaLocation        = nsGPX + " http://www.topografix.com/GPX/1/1/gpx.xsd"

	defaultCreator = "OwnPath"
	defaultSport   = "Running"
)

// ErrWriterUsed is returned when Export is called on a Writer a second time.
var ErrWriterUsed = errors.New("gpx: writer already used")

// Store is the read side of the activity database.
type Store interface {
	Activity(ctx context.Context, id int64) (models.Activity, error)
	Laps(ctx context.Context, activityID int64, includeRest bool) (models.Cursor[models.Lap], error)
	Locations(ctx context.Context, activityID int64) (models.Cursor[models.Location], error)
	// LastLocation and FirstLocation return nil when the lap has no locations.
	LastLocation(ctx context.Context, activityID, lapID int64) (*models.Location, error)
	FirstLocation(ctx context.Context, activityID, lapID int64) (*models.Location, error)
}

// Serializer is a streaming XML writer. Implementations escape text and attribute values.
type Serializer interface {
	StartDocument(encoding string, standalone bool) error
	StartTag(namespace, name string) error
	Attribute(namespace, name, value string) error
	Text(value string) error
	EndTag(namespace, name string) error
	Flush() error
	EndDocument() error
}

// RestLapPolicy controls how laps without distance and time are exported.
type RestLapPolicy int

const (
	// RestLapsOff drops rest laps.
	RestLapsOff RestLapPolicy = iota
	// RestLapsEmpty writes an empty trkseg for each rest lap.
	RestLapsEmpty
	// RestLapsBridge writes a two-point trkseg from the last point of the previous lap
	// to the first point of the next one.
	RestLapsBridge
)

func (p RestLapPolicy) String() string {
	switch p {
	case RestLapsEmpty:
		return "empty"
	case RestLapsBridge:
		return "bridge"
	default:
		return "off"
	}
}

// ParseRestLapPolicy parses "off", "empty" or "bridge".
func ParseRestLapPolicy(s string) (RestLapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return RestLapsOff, nil
	case "empty":
		return RestLapsEmpty, nil
	case "bridge":
		return RestLapsBridge, nil
	}
	return RestLapsOff, fmt.Errorf("unknown rest lap policy %q", s)
}

// Options are fixed for the lifetime of one Writer.
type Options struct {
	// PrivateExtensions adds pressure, accuracy, bearing, speed, satellites and
	// GPS altitude to the output.
	PrivateExtensions bool
	RestLaps          RestLapPolicy

	Creator    string // creator attribute; "OwnPath" when empty
	NamePrefix string // track name prefix; Creator when empty

	FormatTime func(epochMillis int64) string
	SportName  func(code int) string
	Logger     *zap.Logger
}

// Prefix returns the track name prefix: NamePrefix, else Creator, else "OwnPath".
func (o Options) Prefix() string {
	switch {
	case o.NamePrefix != "":
		return o.NamePrefix
	case o.Creator != "":
		return o.Creator
	}
	return defaultCreator
}

func (o Options) withDefaults() Options {
	if o.Creator == "" {
		o.Creator = defaultCreator
	}
	o.NamePrefix = o.Prefix()
	if o.FormatTime == nil {
		o.FormatTime = FormatTime
	}
	if o.SportName == nil {
		o.SportName = models.SportName
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Writer exports a single activity. It is single use: create one per export.
type Writer struct {
	store Store
	xml   Serializer
	opts  Options

	used  bool
	notes *string
}

func NewWriter(store Store, xml Serializer, opts Options) *Writer {
	return &Writer{store: store, xml: xml, opts: opts.withDefaults()}
}

// Notes returns the activity comment captured by Export, if any.
func (w *Writer) Notes() (string, bool) {
	if w.notes == nil {
		return "", false
	}
	return *w.notes, true
}

// Export writes the activity as a GPX document and returns its formatted start time.
// On error the output is incomplete and must be discarded.
func (w *Writer) Export(ctx context.Context, activityID int64) (string, error) {
	if w.used {
		return "", ErrWriterUsed
	}
	w.used = true

	act, err := w.store.Activity(ctx, activityID)
	if err != nil {
		return "", fmt.Errorf("export activity %d: %w", activityID, err)
	}
	startTime := w.opts.FormatTime(act.StartTime * 1000)

	x := &xmlw{s: w.xml}
	x.startDocument("UTF-8", true)
	x.start("gpx")
	x.attr("version", "1.1")
	x.attr("creator", w.creator(act))
	x.attr("xmlns:xsi", nsXSI)
	x.attr("xmlns", nsGPX)
	x.attr("xsi:schemaLocation", schemaLocation)
	x.attr("xmlns:gpxtpx", nsTrackPointExtension)

	x.start("metadata")
	x.elem("time", startTime)
	x.end("metadata")

	x.start("trk")
	x.elem("name", w.opts.NamePrefix+"-"+w.sportName(act)+"-"+startTime)
	if act.Comment != nil {
		notes := *act.Comment
		w.notes = &notes
		x.elem("desc", notes)
	}
	if x.err != nil {
		return "", fmt.Errorf("write gpx header: %w", x.err)
	}

	b := &segmentBuilder{store: w.store, x: x, opts: w.opts, activityID: activityID}
	if err := b.run(ctx); err != nil {
		return "", fmt.Errorf("export laps of activity %d: %w", activityID, err)
	}

	x.end("trk")
	x.end("gpx")
	x.flush()
	x.endDocument()
	if x.err != nil {
		return "", fmt.Errorf("finish gpx document: %w", x.err)
	}

	w.opts.Logger.Debug("gpx export complete",
		zap.Int64("activity_id", activityID),
		zap.Int("segments", b.segments),
		zap.Int("points", b.points),
		zap.Bool("private_extensions", w.opts.PrivateExtensions),
		zap.Stringer("rest_laps", w.opts.RestLaps))
	return startTime, nil
}

func (w *Writer) creator(act models.Activity) string {
	if act.WithBarometer() {
		return w.opts.Creator + " with barometer"
	}
	return w.opts.Creator
}

func (w *Writer) sportName(act models.Activity) string {
	if act.Sport == nil {
		return defaultSport
	}
	return w.opts.SportName(*act.Sport)
}
