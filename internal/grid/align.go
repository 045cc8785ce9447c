package grid

import (
	"fmt"
	"sort"
	"time"
)

// AlignTime resamples fields onto one shared, regular timeline so that
// multi-product sequences line up step for step.
//
// The first field's time coordinate is the reference: the output timeline
// runs from its first to its last timestamp at the requested frequency.
// Every field with a time axis is resampled onto that timeline by nearest
// interpolation along time only; spatial axes are untouched. Fields without
// a time axis (static masks, bathymetry) pass through unchanged. Timeline
// points outside a field's own range take that field's nearest endpoint
// value, which is what nearest interpolation degenerates to at the edges.
//
// The returned slice has the same length and order as the input.
func AlignTime(fields []*Field, freq time.Duration) ([]*Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if freq <= 0 {
		return nil, fmt.Errorf("grid: alignment frequency must be positive, got %v", freq)
	}

	ref := fields[0]
	if !ref.HasTime() {
		out := make([]*Field, len(fields))
		copy(out, fields)
		return out, nil
	}

	timeline := regularTimeline(ref.Times[0], ref.Times[len(ref.Times)-1], freq)

	out := make([]*Field, len(fields))
	for i, f := range fields {
		if !f.HasTime() {
			out[i] = f
			continue
		}
		out[i] = resampleNearest(f, timeline)
	}
	return out, nil
}

// regularTimeline returns start, start+freq, ... up to and including end.
func regularTimeline(start, end time.Time, freq time.Duration) []time.Time {
	var ts []time.Time
	for t := start; !t.After(end); t = t.Add(freq) {
		ts = append(ts, t)
	}
	return ts
}

// resampleNearest builds a new field whose time axis is timeline, taking
// each step's data from the source time step nearest to it.
func resampleNearest(f *Field, timeline []time.Time) *Field {
	slabSize := len(f.Vars) * len(f.Lats) * len(f.Lons)
	data := make([]float32, len(timeline)*slabSize)
	for i, t := range timeline {
		src := nearestTimeIndex(f.Times, t)
		copy(data[i*slabSize:(i+1)*slabSize], f.timeSlab(src))
	}

	times := make([]time.Time, len(timeline))
	copy(times, timeline)

	return &Field{
		Vars:    f.Vars,
		Times:   times,
		Lats:    f.Lats,
		Lons:    f.Lons,
		Data:    data,
		lonConv: f.lonConv,
	}
}

// nearestTimeIndex finds the index of the timestamp nearest to t.
// times is strictly increasing (enforced by NewField), so binary search
// narrows it to two candidates.
func nearestTimeIndex(times []time.Time, t time.Time) int {
	i := sort.Search(len(times), func(j int) bool { return !times[j].Before(t) })
	if i == 0 {
		return 0
	}
	if i == len(times) {
		return len(times) - 1
	}
	if t.Sub(times[i-1]) <= times[i].Sub(t) {
		return i - 1
	}
	return i
}
