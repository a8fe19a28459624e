package gpx

import (
	"context"
	"fmt"

	"github.com/gratten/lapgpx/internal/models"
)

// segmentBuilder writes one trkseg per exported lap. It walks the lap and location
// cursors forward exactly once; neither is rewound or reopened.
type segmentBuilder struct {
	store      Store
	x          *xmlw
	opts       Options
	activityID int64
	filter     pointFilter

	segments int
	points   int
}

// locationStream is the location cursor plus the row it currently points at.
type locationStream struct {
	cur models.Cursor[models.Location]
	ok  bool
	loc models.Location
}

func (s *locationStream) advance() {
	s.ok = s.cur.Next()
	if s.ok {
		s.loc = s.cur.Value()
	}
}

func (b *segmentBuilder) run(ctx context.Context) (err error) {
	laps, err := b.store.Laps(ctx, b.activityID, b.opts.RestLaps != RestLapsOff)
	if err != nil {
		return err
	}
	defer closeCursor(laps, &err)

	locs, err := b.store.Locations(ctx, b.activityID)
	if err != nil {
		return err
	}
	defer closeCursor(locs, &err)

	stream := &locationStream{cur: locs}
	stream.advance()

	// One lap of lookahead tells the rest-lap bridge whether a following lap exists.
	var prev *models.Lap
	more := laps.Next()
	for more {
		lap := laps.Value()
		var next *models.Lap
		if more = laps.Next(); more {
			n := laps.Value()
			next = &n
		}

		switch {
		case lap.IsMotion():
			b.motionLap(lap, stream)
		case lap.IsRest():
			if err := b.restLap(ctx, prev, next); err != nil {
				return err
			}
		}
		if b.x.err != nil {
			return b.x.err
		}
		prev = &lap
	}

	if err := laps.Err(); err != nil {
		return fmt.Errorf("read laps: %w", err)
	}
	if err := locs.Err(); err != nil {
		return fmt.Errorf("read locations: %w", err)
	}
	return nil
}

func (b *segmentBuilder) motionLap(lap models.Lap, stream *locationStream) {
	// Location rows follow lap order, so rows of earlier or filtered-out laps are skipped.
	for stream.ok && stream.loc.LapID < lap.ID {
		stream.advance()
	}

	b.x.start("trkseg")
	b.segments++
	b.filter.reset()
	for stream.ok && stream.loc.LapID == lap.ID && b.x.err == nil {
		loc := stream.loc
		if b.filter.keep(loc.Time, loc.Latitude, loc.Longitude) {
			b.trackPoint(loc)
		}
		stream.advance()
	}
	b.x.end("trkseg")
}

func (b *segmentBuilder) restLap(ctx context.Context, prev, next *models.Lap) error {
	switch b.opts.RestLaps {
	case RestLapsEmpty:
		b.x.start("trkseg")
		b.x.end("trkseg")
		b.segments++
	case RestLapsBridge:
		if prev == nil || next == nil {
			return nil
		}
		from, err := b.store.LastLocation(ctx, b.activityID, prev.ID)
		if err != nil {
			return err
		}
		to, err := b.store.FirstLocation(ctx, b.activityID, next.ID)
		if err != nil {
			return err
		}
		if from == nil || to == nil {
			return nil
		}
		b.x.start("trkseg")
		b.bridgePoint(*from)
		b.bridgePoint(*to)
		b.x.end("trkseg")
		b.segments++
	}
	return nil
}

func (b *segmentBuilder) trackPoint(loc models.Location) {
	b.x.start("trkpt")
	b.x.attr("lon", formatFloat(loc.Longitude))
	b.x.attr("lat", formatFloat(loc.Latitude))
	if ele := Elevation(loc, b.opts.PrivateExtensions); ele != nil {
		b.x.elem("ele", formatFloat(*ele))
	}
	b.x.elem("time", b.opts.FormatTime(loc.Time))
	ExtensionFields(loc, b.opts.PrivateExtensions).write(b.x)
	b.x.end("trkpt")
	b.points++
}

// bridgePoint writes a bare position for a rest lap: no sensor extensions.
func (b *segmentBuilder) bridgePoint(loc models.Location) {
	b.x.start("trkpt")
	b.x.attr("lon", formatFloat(loc.Longitude))
	b.x.attr("lat", formatFloat(loc.Latitude))
	if loc.Altitude != nil {
		b.x.elem("ele", formatFloat(*loc.Altitude))
	}
	b.x.elem("time", b.opts.FormatTime(loc.Time))
	b.x.end("trkpt")
	b.points++
}

func closeCursor[T any](c models.Cursor[T], err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close cursor: %w", cerr)
	}
}
