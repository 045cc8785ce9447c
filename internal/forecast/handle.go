package forecast

import (
	"fmt"
	"sync/atomic"

	"github.com/marinecast/wave-forecast/internal/model"
)

// Handle is the single shared reference to the loaded model. It is built
// once at process start and passed to every call site; there is no mutable
// package-level model. Reloading a checkpoint constructs a fresh
// Forecaster and swaps the pointer atomically, so in-flight predictions
// keep the instance they started with and later calls see the new one.
type Handle struct {
	current atomic.Pointer[model.Forecaster]
}

// NewHandle wraps an already-constructed forecaster.
func NewHandle(f *model.Forecaster) *Handle {
	h := &Handle{}
	h.current.Store(f)
	return h
}

// Current returns the forecaster serving predictions right now.
func (h *Handle) Current() *model.Forecaster {
	return h.current.Load()
}

// Reload loads a checkpoint and swaps it in. The previous model keeps
// serving until the swap; on error nothing changes.
func (h *Handle) Reload(path string) error {
	f, err := model.LoadCheckpoint(path)
	if err != nil {
		return fmt.Errorf("reload checkpoint: %w", err)
	}
	h.current.Store(f)
	return nil
}
