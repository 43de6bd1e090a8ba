package timeline

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Marker is a named point on a timeline that is reported when playback
// crosses it.
type Marker struct {
	Name     string
	Progress float64
}

// AddMarker adds a marker at the given progress. Markers are kept in
// ascending progress order with markers at equal progress kept in
// insertion order. Marker names must be unique.
func (t *Timeline) AddMarker(name string, progress float64) error {
	if progress < 0 || progress > 1 || math.IsNaN(progress) {
		return fmt.Errorf("marker %q at %v: %w", name, progress, ErrOutOfRange)
	}
	if slices.ContainsFunc(t.markers, func(m Marker) bool { return m.Name == name }) {
		return fmt.Errorf("marker %q: %w", name, ErrDuplicateMarker)
	}
	i, _ := slices.BinarySearchFunc(t.markers, progress, func(m Marker, p float64) int {
		if m.Progress <= p {
			return -1
		}
		return 1
	})
	t.markers = slices.Insert(t.markers, i, Marker{Name: name, Progress: progress})
	switch t.direction {
	case Forward:
		if i < t.next || progress < t.Progress() {
			t.next++
		}
	case Backward:
		if i <= t.next || progress < t.Progress() {
			t.next++
		}
	}
	return nil
}

// AddMarkerAtTime adds a marker at the given offset from the start of
// the timeline.
func (t *Timeline) AddMarkerAtTime(name string, offset time.Duration) error {
	if offset < 0 || offset > t.duration {
		return fmt.Errorf("marker %q at %v of %v: %w", name, offset, t.duration, ErrOutOfRange)
	}
	var progress float64
	if t.duration > 0 {
		progress = float64(offset) / float64(t.duration)
	}
	return t.AddMarker(name, progress)
}

// RemoveMarker removes the named marker, reporting whether it existed.
func (t *Timeline) RemoveMarker(name string) bool {
	i := slices.IndexFunc(t.markers, func(m Marker) bool { return m.Name == name })
	if i < 0 {
		return false
	}
	t.markers = slices.Delete(t.markers, i, i+1)
	switch t.direction {
	case Forward:
		if i < t.next {
			t.next--
		}
	case Backward:
		if i <= t.next {
			t.next--
		}
	}
	return true
}

// ListMarkers returns the names of markers placed exactly at progress
// at. If at is outside [0, 1] all marker names are returned.
func (t *Timeline) ListMarkers(at float64) []string {
	var names []string
	for _, m := range t.markers {
		if at < 0 || at > 1 || m.Progress == at {
			names = append(names, m.Name)
		}
	}
	return names
}

// Markers returns a copy of the timeline's markers in ascending order.
func (t *Timeline) Markers() []Marker {
	return slices.Clone(t.markers)
}

// resetCursor places the marker cursor at the start of a pass in the
// current direction.
func (t *Timeline) resetCursor() {
	if t.direction == Backward {
		t.next = len(t.markers) - 1
	} else {
		t.next = 0
	}
}

// seekCursor places the marker cursor so that markers at or behind p in
// the current direction are treated as already fired. At the start point
// of a pass the cursor is reset instead.
func (t *Timeline) seekCursor(p float64) {
	if t.direction == Forward && p <= 0 || t.direction == Backward && p >= 1 {
		t.resetCursor()
		return
	}
	if t.direction == Backward {
		t.next = -1
		for i, m := range t.markers {
			if m.Progress < p {
				t.next = i
			}
		}
		return
	}
	t.next = len(t.markers)
	for i, m := range t.markers {
		if m.Progress > p {
			t.next = i
			break
		}
	}
}

// fireMarkers reports markers crossed up to and including p.
func (t *Timeline) fireMarkers(p float64) {
	switch t.direction {
	case Forward:
		for t.next >= 0 && t.next < len(t.markers) && t.markers[t.next].Progress <= p {
			m := t.markers[t.next]
			t.next++
			t.emitMarker(m)
		}
	case Backward:
		for t.next >= 0 && t.next < len(t.markers) && t.markers[t.next].Progress >= p {
			m := t.markers[t.next]
			t.next--
			t.emitMarker(m)
		}
	}
}

func (t *Timeline) emitMarker(m Marker) {
	t.log.Debug("marker", "name", m.Name, "progress", m.Progress)
	for _, fn := range t.onMarker {
		fn(m.Name, m.Progress)
	}
}
