package dataset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch is a materialized slice of up to batchSize consecutive samples.
// Start is the index of the batch's first sample in the source set, so
// consumers that care about chronology can reorder on arrival.
type Batch struct {
	Primary   []float32
	Secondary []float32
	Target    []float32
	Start     int
	Size      int
}

// Prefetcher copies batches out of a read-only SampleSet on a small worker
// pool so the next batches are being staged while the model consumes the
// current one. Workers share nothing but the source set, which they only
// read; the handoff is a bounded channel.
type Prefetcher struct {
	set       *SampleSet
	batchSize int
	workers   int
	depth     int
}

// NewPrefetcher configures batched delivery of set. batchSize must be
// positive; workers and depth fall back to 1 when non-positive.
func NewPrefetcher(set *SampleSet, batchSize, workers, depth int) (*Prefetcher, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}
	if workers <= 0 {
		workers = 1
	}
	if depth <= 0 {
		depth = 1
	}
	return &Prefetcher{set: set, batchSize: batchSize, workers: workers, depth: depth}, nil
}

// NumBatches returns how many batches one pass over the set produces.
func (p *Prefetcher) NumBatches() int {
	return (p.set.N + p.batchSize - 1) / p.batchSize
}

// Run streams every batch of the set into the returned channel and closes
// it when the pass is complete or the context is cancelled. Batch delivery
// order across workers is unspecified; each Batch carries its Start index.
// The returned wait function reports the first worker error (context
// cancellation included) after the channel closes.
func (p *Prefetcher) Run(ctx context.Context) (<-chan Batch, func() error) {
	out := make(chan Batch, p.depth)
	indices := make(chan int)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < p.NumBatches(); i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	workers := &errgroup.Group{}
	for w := 0; w < p.workers; w++ {
		workers.Go(func() error {
			for i := range indices {
				select {
				case out <- p.materialize(i):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		err := workers.Wait()
		close(out)
		if gerr := g.Wait(); gerr != nil && err == nil {
			err = gerr
		}
		done <- err
	}()

	return out, func() error { return <-done }
}

// materialize copies batch i's samples out of the backing arrays.
func (p *Prefetcher) materialize(i int) Batch {
	start := i * p.batchSize
	end := start + p.batchSize
	if end > p.set.N {
		end = p.set.N
	}
	size := end - start

	b := Batch{
		Start:     start,
		Size:      size,
		Primary:   make([]float32, size*p.set.PrimarySampleLen()),
		Secondary: make([]float32, size*p.set.SecondarySampleLen()),
		Target:    make([]float32, size*p.set.Horizon),
	}
	copy(b.Primary, p.set.Primary[start*p.set.PrimarySampleLen():end*p.set.PrimarySampleLen()])
	copy(b.Secondary, p.set.Secondary[start*p.set.SecondarySampleLen():end*p.set.SecondarySampleLen()])
	copy(b.Target, p.set.Target[start*p.set.Horizon:end*p.set.Horizon])
	return b
}
