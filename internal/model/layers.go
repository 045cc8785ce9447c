package model

import (
	"math"
	"math/rand"
)

// linear is a fully connected layer y = xW^T + b over the last axis.
type linear struct {
	in, out int
	w       []float32 // [out][in]
	b       []float32 // [out]
}

func newLinear(rng *rand.Rand, in, out int) *linear {
	l := &linear{in: in, out: out, w: make([]float32, out*in), b: make([]float32, out)}
	xavierFill(rng, l.w, in, out)
	return l
}

// forward maps [rows, in] to [rows, out]. x is any tensor whose trailing
// axis is in; the leading axes are flattened into rows.
func (l *linear) forward(x *Tensor) *Tensor {
	rows := x.Numel() / l.in
	out := &Tensor{Shape: []int{rows, l.out}, Data: make([]float32, rows*l.out)}
	for r := 0; r < rows; r++ {
		xr := x.Data[r*l.in : (r+1)*l.in]
		or := out.Data[r*l.out : (r+1)*l.out]
		for o := 0; o < l.out; o++ {
			wo := l.w[o*l.in : (o+1)*l.in]
			sum := l.b[o]
			for i, v := range xr {
				sum += v * wo[i]
			}
			or[o] = sum
		}
	}
	return out
}

func (l *linear) params() []param {
	return []param{{"w", l.w}, {"b", l.b}}
}

// conv2d is a 3x3 same-padding convolution.
type conv2d struct {
	in, out int
	w       []float32 // [out][in][3][3]
	b       []float32 // [out]
}

func newConv2d(rng *rand.Rand, in, out int) *conv2d {
	c := &conv2d{in: in, out: out, w: make([]float32, out*in*9), b: make([]float32, out)}
	xavierFill(rng, c.w, in*9, out*9)
	return c
}

// forward maps [B, in, H, W] to [B, out, H, W] with zero padding of 1.
func (c *conv2d) forward(x *Tensor) *Tensor {
	b, h, w := x.Dim(0), x.Dim(2), x.Dim(3)
	out := NewTensor(b, c.out, h, w)
	for n := 0; n < b; n++ {
		for oc := 0; oc < c.out; oc++ {
			for i := 0; i < h; i++ {
				for j := 0; j < w; j++ {
					sum := c.b[oc]
					for ic := 0; ic < c.in; ic++ {
						for ki := -1; ki <= 1; ki++ {
							ii := i + ki
							if ii < 0 || ii >= h {
								continue
							}
							for kj := -1; kj <= 1; kj++ {
								jj := j + kj
								if jj < 0 || jj >= w {
									continue
								}
								wv := c.w[((oc*c.in+ic)*3+(ki+1))*3+(kj+1)]
								sum += wv * x.Data[((n*c.in+ic)*h+ii)*w+jj]
							}
						}
					}
					out.Data[((n*c.out+oc)*h+i)*w+j] = sum
				}
			}
		}
	}
	return out
}

func (c *conv2d) params() []param {
	return []param{{"w", c.w}, {"b", c.b}}
}

// layerNorm normalizes the last axis to zero mean and unit variance, then
// applies a learned scale and shift.
type layerNorm struct {
	dim   int
	gamma []float32
	beta  []float32
}

func newLayerNorm(dim int) *layerNorm {
	ln := &layerNorm{dim: dim, gamma: make([]float32, dim), beta: make([]float32, dim)}
	for i := range ln.gamma {
		ln.gamma[i] = 1
	}
	return ln
}

const layerNormEps = 1e-5

func (ln *layerNorm) forward(x *Tensor) *Tensor {
	rows := x.Numel() / ln.dim
	out := &Tensor{Shape: append([]int(nil), x.Shape...), Data: make([]float32, x.Numel())}
	for r := 0; r < rows; r++ {
		xr := x.Data[r*ln.dim : (r+1)*ln.dim]
		or := out.Data[r*ln.dim : (r+1)*ln.dim]

		var mean float64
		for _, v := range xr {
			mean += float64(v)
		}
		mean /= float64(ln.dim)

		var variance float64
		for _, v := range xr {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(ln.dim)

		inv := 1 / math.Sqrt(variance+layerNormEps)
		for i, v := range xr {
			or[i] = ln.gamma[i]*float32((float64(v)-mean)*inv) + ln.beta[i]
		}
	}
	return out
}

func (ln *layerNorm) params() []param {
	return []param{{"gamma", ln.gamma}, {"beta", ln.beta}}
}

// reluInPlace clamps negatives to zero.
func reluInPlace(t *Tensor) *Tensor {
	for i, v := range t.Data {
		if v < 0 {
			t.Data[i] = 0
		}
	}
	return t
}

// globalAvgPool reduces [B, C, H, W] to [B, C].
func globalAvgPool(x *Tensor) *Tensor {
	b, c, h, w := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)
	out := NewTensor(b, c)
	area := float64(h * w)
	for n := 0; n < b; n++ {
		for ch := 0; ch < c; ch++ {
			var sum float64
			base := (n*c + ch) * h * w
			for i := 0; i < h*w; i++ {
				sum += float64(x.Data[base+i])
			}
			out.Data[n*c+ch] = float32(sum / area)
		}
	}
	return out
}

// addInPlace accumulates src into dst element-wise.
func addInPlace(dst, src *Tensor) *Tensor {
	for i, v := range src.Data {
		dst.Data[i] += v
	}
	return dst
}

// softmaxRows applies a numerically stable softmax over each row of a
// [rows, cols] slice.
func softmaxRows(data []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		maxV := row[0]
		for _, v := range row[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxV))
			row[i] = float32(e)
			sum += e
		}
		for i := range row {
			row[i] = float32(float64(row[i]) / sum)
		}
	}
}

// xavierFill initializes weights uniformly in ±sqrt(6/(fanIn+fanOut)).
func xavierFill(rng *rand.Rand, w []float32, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * limit)
	}
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
