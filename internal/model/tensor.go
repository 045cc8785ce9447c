// Package model implements the multimodal wave forecaster: two
// convolutional spatial encoders, a self-attention fusion stage, a
// recurrent temporal aggregator and a linear forecast head.
//
// The numeric layer is plain float32 slices. Patches are small (single-digit
// to low-double-digit extents) and windows short, so dense row-major loops
// are fast enough and keep the forward pass dependency-free and
// deterministic. A Forecaster is immutable after construction and safe for
// concurrent Predict calls.
package model

import "fmt"

// Tensor is a dense row-major float32 array with an explicit shape.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor allocates a zero tensor with the given shape.
func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Tensor{Shape: shape, Data: make([]float32, n)}
}

// Numel returns the total number of elements.
func (t *Tensor) Numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Dim returns the size of axis i.
func (t *Tensor) Dim(i int) int { return t.Shape[i] }

// Reshape returns a view of the same data with a new shape. The element
// count must not change.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != t.Numel() {
		return nil, fmt.Errorf("model: cannot reshape %v (%d values) to %v (%d values)",
			t.Shape, t.Numel(), shape, n)
	}
	return &Tensor{Shape: shape, Data: t.Data}, nil
}

// checkShape fails unless t has exactly the given shape.
func (t *Tensor) checkShape(name string, shape ...int) error {
	if len(t.Shape) != len(shape) {
		return fmt.Errorf("model: %s has rank %d, want %d", name, len(t.Shape), len(shape))
	}
	for i, d := range shape {
		if d >= 0 && t.Shape[i] != d {
			return fmt.Errorf("model: %s has shape %v, want %v at axis %d", name, t.Shape, d, i)
		}
	}
	return nil
}
