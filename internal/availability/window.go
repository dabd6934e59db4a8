// internal/availability/window.go
package availability

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are accepted input formats for window instants, tried in
// order. RFC3339 is canonical; the space-separated layout matches what
// scheduling UIs commonly submit.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NewTimeWindow builds a validated window. Start must be strictly before
// End.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() || end.IsZero() {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	if !start.Before(end) {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	return TimeWindow{Start: start, End: end}, nil
}

// ParseTimeWindow parses raw start/end strings and validates the result.
func ParseTimeWindow(startRaw, endRaw string) (TimeWindow, error) {
	start, err := parseInstant(startRaw)
	if err != nil {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	end, err := parseInstant(endRaw)
	if err != nil {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	return NewTimeWindow(start, end)
}

func parseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty instant")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable instant: %q", raw)
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether a reservation interval conflicts with the
// window. The convention is strict: intervals that merely touch at a
// boundary (back-to-back bookings) do not overlap.
func (w TimeWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}
