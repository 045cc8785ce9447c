package model

import "math/rand"

// lstm is a single-layer LSTM used as the temporal aggregator. It walks the
// fused sequence in chronological order and returns the final hidden state;
// this is the only stage of the model where temporal order is structurally
// significant.
type lstm struct {
	in, hidden int
	wx         []float32 // [4*hidden][in], gate order i, f, g, o
	wh         []float32 // [4*hidden][hidden]
	b          []float32 // [4*hidden]
}

func newLSTM(rng *rand.Rand, in, hidden int) *lstm {
	l := &lstm{
		in:     in,
		hidden: hidden,
		wx:     make([]float32, 4*hidden*in),
		wh:     make([]float32, 4*hidden*hidden),
		b:      make([]float32, 4*hidden),
	}
	xavierFill(rng, l.wx, in, hidden)
	xavierFill(rng, l.wh, hidden, hidden)
	// Forget gate bias starts at 1 so early steps are not forgotten before
	// the gates have learned anything.
	for i := hidden; i < 2*hidden; i++ {
		l.b[i] = 1
	}
	return l
}

// forward maps [B, T, in] to the final hidden state [B, hidden].
func (l *lstm) forward(x *Tensor) *Tensor {
	b, t := x.Dim(0), x.Dim(1)
	k := l.hidden

	h := make([]float32, b*k)
	c := make([]float32, b*k)
	gates := make([]float32, 4*k)

	for step := 0; step < t; step++ {
		for n := 0; n < b; n++ {
			xt := x.Data[(n*t+step)*l.in : (n*t+step+1)*l.in]
			hn := h[n*k : (n+1)*k]
			cn := c[n*k : (n+1)*k]

			for g := 0; g < 4*k; g++ {
				sum := l.b[g]
				wx := l.wx[g*l.in : (g+1)*l.in]
				for i, v := range xt {
					sum += v * wx[i]
				}
				wh := l.wh[g*k : (g+1)*k]
				for i, v := range hn {
					sum += v * wh[i]
				}
				gates[g] = sum
			}

			for i := 0; i < k; i++ {
				ig := sigmoid(gates[i])
				fg := sigmoid(gates[k+i])
				gg := tanh32(gates[2*k+i])
				og := sigmoid(gates[3*k+i])
				cn[i] = fg*cn[i] + ig*gg
				hn[i] = og * tanh32(cn[i])
			}
		}
	}

	return &Tensor{Shape: []int{b, k}, Data: h}
}

func (l *lstm) params() []param {
	return []param{{"wx", l.wx}, {"wh", l.wh}, {"b", l.b}}
}
