package gpx

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gratten/lapgpx/internal/models"
	"github.com/gratten/lapgpx/internal/xmlstream"
)

func ptr[T any](v T) *T { return &v }

var errSink = errors.New("sink closed")

// fakeStore serves one activity from memory and counts open cursors.
type fakeStore struct {
	activity  *models.Activity
	laps      []models.Lap
	locations []models.Location

	locationsErr error
	open         int
	opened       int
}

func (s *fakeStore) Activity(_ context.Context, id int64) (models.Activity, error) {
	if s.activity == nil || s.activity.ID != id {
		return models.Activity{}, fmt.Errorf("activity %d: %w", id, models.ErrNotFound)
	}
	return *s.activity, nil
}

func (s *fakeStore) Laps(_ context.Context, _ int64, includeRest bool) (models.Cursor[models.Lap], error) {
	var laps []models.Lap
	for _, lap := range s.laps {
		if includeRest || lap.Distance > 0 || lap.Duration > 0 {
			laps = append(laps, lap)
		}
	}
	return newSliceCursor(s, laps), nil
}

func (s *fakeStore) Locations(context.Context, int64) (models.Cursor[models.Location], error) {
	if s.locationsErr != nil {
		return nil, s.locationsErr
	}
	return newSliceCursor(s, s.locations), nil
}

func (s *fakeStore) LastLocation(_ context.Context, _ int64, lapID int64) (*models.Location, error) {
	for i := len(s.locations) - 1; i >= 0; i-- {
		if s.locations[i].LapID == lapID {
			loc := s.locations[i]
			return &loc, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FirstLocation(_ context.Context, _ int64, lapID int64) (*models.Location, error) {
	for _, loc := range s.locations {
		if loc.LapID == lapID {
			return &loc, nil
		}
	}
	return nil, nil
}

type sliceCursor[T any] struct {
	store *fakeStore
	items []T
	pos   int
}

func newSliceCursor[T any](store *fakeStore, items []T) *sliceCursor[T] {
	store.open++
	store.opened++
	return &sliceCursor[T]{store: store, items: items, pos: -1}
}

func (c *sliceCursor[T]) Next() bool {
	c.pos++
	return c.pos < len(c.items)
}

func (c *sliceCursor[T]) Value() T   { return c.items[c.pos] }
func (c *sliceCursor[T]) Err() error { return nil }
func (c *sliceCursor[T]) Close() error {
	c.store.open--
	return nil
}

// recorder is a Serializer that records calls and can fail on the n-th one.
type recorder struct {
	events []string
	failAt int
	calls  int
}

func (r *recorder) step(event string) error {
	r.calls++
	if r.failAt > 0 && r.calls >= r.failAt {
		return errSink
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) StartDocument(string, bool) error    { return r.step("doc") }
func (r *recorder) StartTag(_, name string) error        { return r.step("<" + name) }
func (r *recorder) Attribute(_, name, value string) error { return r.step("@" + name + "=" + value) }
func (r *recorder) Text(value string) error              { return r.step("text:" + value) }
func (r *recorder) EndTag(_, name string) error          { return r.step("</" + name) }
func (r *recorder) Flush() error                         { return r.step("flush") }
func (r *recorder) EndDocument() error                   { return r.step("enddoc") }

// export renders the store's activity to a string through xmlstream.
func export(t *testing.T, store *fakeStore, opts Options) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(store, xmlstream.New(&buf, xmlstream.WithIndent()), opts)
	startTime, err := w.Export(context.Background(), store.activity.ID)
	require.NoError(t, err)
	require.Zero(t, store.open, "cursors left open")
	return startTime, buf.String()
}

type testGPX struct {
	XMLName xml.Name    `xml:"gpx"`
	Version string      `xml:"version,attr"`
	Creator string      `xml:"creator,attr"`
	Time    string      `xml:"metadata>time"`
	Tracks  []testTrack `xml:"trk"`
}

type testTrack struct {
	Name     string        `xml:"name"`
	Desc     *string       `xml:"desc"`
	Segments []testSegment `xml:"trkseg"`
}

type testSegment struct {
	Points []testPoint `xml:"trkpt"`
}

type testPoint struct {
	Lat        float64         `xml:"lat,attr"`
	Lon        float64         `xml:"lon,attr"`
	Ele        []float64       `xml:"ele"`
	Time       string          `xml:"time"`
	Extensions *testExtensions `xml:"extensions"`
}

type testExtensions struct {
	TrackPoint *struct {
		HR    *int     `xml:"hr"`
		Cad   *float64 `xml:"cad"`
		ATemp *float64 `xml:"atemp"`
	} `xml:"TrackPointExtension"`
	Pressure *float64 `xml:"pressure"`
	Accuracy *float64 `xml:"accuracy"`
	Bearing  *float64 `xml:"bearing"`
	Speed    *float64 `xml:"speed"`
	Sat      *int     `xml:"sat"`
}

func parse(t *testing.T, doc string) testGPX {
	t.Helper()
	var out testGPX
	require.NoError(t, xml.Unmarshal([]byte(doc), &out))
	return out
}
