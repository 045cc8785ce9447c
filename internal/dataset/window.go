// Package dataset assembles model-ready samples from patch time series and
// handles their persistence and batched delivery.
//
// A sample pairs T steps of observed history from each modality with the H
// significant-wave-height values that follow, read from the primary
// modality's first variable at the patch center. Samples are built with
// stride 1, so consecutive windows overlap by T+H-1 steps and index 0 is
// the earliest window.
package dataset

import (
	"errors"
	"fmt"

	"github.com/marinecast/wave-forecast/internal/grid"
)

// ErrShapeMismatch is returned when the two modality series disagree on
// dimensions that must be parallel.
var ErrShapeMismatch = errors.New("dataset: shape mismatch")

// SampleSet holds N training/inference samples as three parallel float32
// arrays: primary windows [N,T,Cw,P,P], secondary windows [N,T,Cg,P,P] and
// future targets [N,H].
type SampleSet struct {
	Primary   []float32
	Secondary []float32
	Target    []float32

	N                 int
	TimeSteps         int
	Horizon           int
	PrimaryChannels   int
	SecondaryChannels int
	PatchSize         int
}

// Empty reports whether the set contains no samples. An empty set signals
// insufficient history, not a failure.
func (s *SampleSet) Empty() bool { return s.N == 0 }

// PrimarySampleLen returns the number of float32 values in one primary window.
func (s *SampleSet) PrimarySampleLen() int {
	return s.TimeSteps * s.PrimaryChannels * s.PatchSize * s.PatchSize
}

// SecondarySampleLen returns the number of float32 values in one secondary window.
func (s *SampleSet) SecondarySampleLen() int {
	return s.TimeSteps * s.SecondaryChannels * s.PatchSize * s.PatchSize
}

// BuildSequences slides a length-T window over two aligned patch series and
// emits (past, past, future) samples.
//
// Both patches must cover the same time axis and share the same spatial
// extent. Window i observes steps [i, i+T) of both series; its target is
// the primary series' variable 0 at the center pixel for steps [i+T, i+T+H).
// With L time steps this yields N = L-(T+H)+1 windows; when N <= 0 the
// returned set is empty and err is nil, so callers can tell "no data yet"
// from a hard failure.
func BuildSequences(primary, secondary *grid.Patch, timeSteps, horizon int) (*SampleSet, error) {
	if timeSteps <= 0 || horizon <= 0 {
		return nil, fmt.Errorf("%w: time steps %d and horizon %d must be positive", ErrShapeMismatch, timeSteps, horizon)
	}
	if primary.TimeLen() != secondary.TimeLen() {
		return nil, fmt.Errorf("%w: primary has %d time steps, secondary %d",
			ErrShapeMismatch, primary.TimeLen(), secondary.TimeLen())
	}
	if primary.Size() != secondary.Size() {
		return nil, fmt.Errorf("%w: primary patch is %d wide, secondary %d",
			ErrShapeMismatch, primary.Size(), secondary.Size())
	}

	p := primary.Size()
	cw := len(primary.Vars)
	cg := len(secondary.Vars)
	l := primary.TimeLen()

	set := &SampleSet{
		TimeSteps:         timeSteps,
		Horizon:           horizon,
		PrimaryChannels:   cw,
		SecondaryChannels: cg,
		PatchSize:         p,
	}

	n := l - (timeSteps + horizon) + 1
	if n <= 0 {
		set.Primary = []float32{}
		set.Secondary = []float32{}
		set.Target = []float32{}
		return set, nil
	}
	set.N = n

	set.Primary = make([]float32, n*set.PrimarySampleLen())
	set.Secondary = make([]float32, n*set.SecondarySampleLen())
	set.Target = make([]float32, n*horizon)

	center := p / 2
	for i := 0; i < n; i++ {
		copyWindow(set.Primary[i*set.PrimarySampleLen():], &primary.Field, i, timeSteps)
		copyWindow(set.Secondary[i*set.SecondarySampleLen():], &secondary.Field, i, timeSteps)
		for h := 0; h < horizon; h++ {
			set.Target[i*horizon+h] = primary.At(i+timeSteps+h, 0, center, center)
		}
	}
	return set, nil
}

// copyWindow copies time steps [start, start+steps) of f into dst.
func copyWindow(dst []float32, f *grid.Field, start, steps int) {
	slab := len(f.Vars) * len(f.Lats) * len(f.Lons)
	copy(dst[:steps*slab], f.Data[start*slab:(start+steps)*slab])
}
