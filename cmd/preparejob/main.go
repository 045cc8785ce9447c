// Command preparejob assembles a training-sample archive for one station.
// It generates synthetic WW3 and GFS forecast cycles on a regular grid,
// aligns them to a common hourly timeline, extracts the patch centered on
// the station, windows the patch series into training samples, and writes
// the result as a compressed archive.
//
// Usage:
//
//	go run ./cmd/preparejob \
//	  -station 46042 \
//	  -hours 48 \
//	  -out data/46042_samples.wsa
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/marinecast/wave-forecast/internal/dataset"
	"github.com/marinecast/wave-forecast/internal/forecast"
	"github.com/marinecast/wave-forecast/internal/grid"
)

var baseCycle = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

var (
	ww3Vars = []string{"swh", "mwp", "mwd"}
	gfsVars = []string{"u10", "v10", "pres"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stationID := flag.String("station", "46042", "buoy station ID to center the patch on")
	hours := flag.Int("hours", 48, "length of the synthetic forecast cycle in hours")
	patchSize := flag.Int("patch-size", 9, "spatial patch size in grid cells")
	timeSteps := flag.Int("time-steps", 12, "input window length in hours")
	horizon := flag.Int("horizon", 6, "prediction horizon in hours")
	seed := flag.Int64("seed", 42, "random seed for the synthetic fields")
	out := flag.String("out", "", "output archive path")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	locator := forecast.NewStaticLocator(forecast.DefaultStations())
	station, err := locator.Locate(context.Background(), *stationID)
	if err != nil {
		return fmt.Errorf("station %s: %w", *stationID, err)
	}

	rng := rand.New(rand.NewSource(*seed))

	// WW3 on an hourly cycle, GFS every 3 hours; AlignTime resamples the
	// coarser field onto the wave model's timeline.
	wave, err := syntheticField(rng, station, ww3Vars, *hours, time.Hour)
	if err != nil {
		return fmt.Errorf("build wave field: %w", err)
	}
	atmo, err := syntheticField(rng, station, gfsVars, *hours/3, 3*time.Hour)
	if err != nil {
		return fmt.Errorf("build atmospheric field: %w", err)
	}

	aligned, err := grid.AlignTime([]*grid.Field{wave, atmo}, time.Hour)
	if err != nil {
		return fmt.Errorf("align timelines: %w", err)
	}

	wavePatch, err := grid.Extract(aligned[0], station.Lat, station.Lon, *patchSize, grid.BoundaryClamp)
	if err != nil {
		return fmt.Errorf("extract wave patch: %w", err)
	}
	atmoPatch, err := grid.Extract(aligned[1], station.Lat, station.Lon, *patchSize, grid.BoundaryClamp)
	if err != nil {
		return fmt.Errorf("extract atmospheric patch: %w", err)
	}

	set, err := dataset.BuildSequences(wavePatch, atmoPatch, *timeSteps, *horizon)
	if err != nil {
		return fmt.Errorf("build sequences: %w", err)
	}
	if set.Empty() {
		return fmt.Errorf("cycle too short: %d hourly steps yield no %d+%d windows",
			*hours, *timeSteps, *horizon)
	}

	if err := dataset.WriteArchive(*out, set); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	log.Printf("station %s: %d samples (window %d, horizon %d, patch %dx%d)",
		station.ID, set.N, set.TimeSteps, set.Horizon, set.PatchSize, set.PatchSize)
	log.Printf("wrote archive: %s", *out)
	return nil
}

// syntheticField builds a plausible gridded field around the station: a
// 0.25 degree lattice large enough that any patch fits, with smoothly
// varying pseudo-random values per variable.
func syntheticField(rng *rand.Rand, station forecast.Station, vars []string, steps int, freq time.Duration) (*grid.Field, error) {
	const cells = 33
	const res = 0.25

	lats := make([]float64, cells)
	lons := make([]float64, cells)
	for i := 0; i < cells; i++ {
		lats[i] = station.Lat + (float64(i)-cells/2)*res
		lons[i] = station.Lon + (float64(i)-cells/2)*res
	}

	times := make([]time.Time, steps)
	for t := 0; t < steps; t++ {
		times[t] = baseCycle.Add(time.Duration(t) * freq)
	}

	data := make([]float32, steps*len(vars)*cells*cells)
	idx := 0
	for t := 0; t < steps; t++ {
		for range vars {
			base := 2.0 + rng.Float64()
			for i := 0; i < cells; i++ {
				for j := 0; j < cells; j++ {
					data[idx] = float32(base + 0.1*rng.NormFloat64())
					idx++
				}
			}
		}
	}

	return grid.NewField(vars, times, lats, lons, data)
}
