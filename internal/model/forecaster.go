package model

import (
	"fmt"
	"math/rand"
)

// Config fixes the tensor contract between the assembly pipeline and the
// model. Inference inputs must be shaped [B, T, WW3Channels, P, P] and
// [B, T, GFSChannels, P, P]; output is [B, Horizon].
type Config struct {
	WW3Channels int `json:"ww3_channels"`
	GFSChannels int `json:"gfs_channels"`
	PatchSize   int `json:"patch_size"`
	TimeSteps   int `json:"time_steps"`
	Horizon     int `json:"horizon"`

	CNNDim       int `json:"cnn_dim"`
	FusionDim    int `json:"fusion_dim"`
	FusionHeads  int `json:"fusion_heads"`
	FusionLayers int `json:"fusion_layers"`
	FusionFFDim  int `json:"fusion_ff_dim"`
	HiddenDim    int `json:"hidden_dim"`
}

// DefaultConfig mirrors the operational setup: 3 wave channels (swh, mwp,
// mwd), 3 atmospheric channels (u10, v10, prmsl), 9x9 patches, 12 hours of
// history, 6 lead hours.
func DefaultConfig() Config {
	return Config{
		WW3Channels:  3,
		GFSChannels:  3,
		PatchSize:    9,
		TimeSteps:    12,
		Horizon:      6,
		CNNDim:       128,
		FusionDim:    256,
		FusionHeads:  4,
		FusionLayers: 2,
		FusionFFDim:  256,
		HiddenDim:    256,
	}
}

// Validate rejects configurations the architecture cannot express.
func (c Config) Validate() error {
	switch {
	case c.WW3Channels <= 0 || c.GFSChannels <= 0:
		return fmt.Errorf("model: channel counts must be positive (ww3=%d gfs=%d)", c.WW3Channels, c.GFSChannels)
	case c.PatchSize < 3:
		return fmt.Errorf("model: patch size %d is below the convolution kernel support", c.PatchSize)
	case c.TimeSteps <= 0 || c.Horizon <= 0:
		return fmt.Errorf("model: time steps %d and horizon %d must be positive", c.TimeSteps, c.Horizon)
	case c.CNNDim <= 0 || c.FusionDim <= 0 || c.HiddenDim <= 0 || c.FusionFFDim <= 0:
		return fmt.Errorf("model: layer widths must be positive")
	case c.FusionLayers < 1:
		return fmt.Errorf("model: fusion needs at least one layer, got %d", c.FusionLayers)
	case c.FusionHeads < 1 || c.FusionDim%c.FusionHeads != 0:
		return fmt.Errorf("model: fusion dim %d must divide evenly across %d heads", c.FusionDim, c.FusionHeads)
	}
	return nil
}

// spatialEncoder compresses a patch into a fixed-length embedding:
// two 3x3 conv stages with ReLU, global average pooling, and a linear
// projection. Global pooling makes the output width independent of the
// spatial extent, so any patch >= 3x3 encodes to the same dimension.
type spatialEncoder struct {
	conv1 *conv2d
	conv2 *conv2d
	proj  *linear
}

func newSpatialEncoder(rng *rand.Rand, inChannels, outDim int) *spatialEncoder {
	return &spatialEncoder{
		conv1: newConv2d(rng, inChannels, 32),
		conv2: newConv2d(rng, 32, 64),
		proj:  newLinear(rng, 64, outDim),
	}
}

// forward maps [B, C, P, P] to [B, E].
func (s *spatialEncoder) forward(x *Tensor) *Tensor {
	h := reluInPlace(s.conv1.forward(x))
	h = reluInPlace(s.conv2.forward(h))
	return s.proj.forward(globalAvgPool(h))
}

func (s *spatialEncoder) params() []param {
	var ps []param
	ps = append(ps, prefixParams("conv1", s.conv1.params())...)
	ps = append(ps, prefixParams("conv2", s.conv2.params())...)
	ps = append(ps, prefixParams("proj", s.proj.params())...)
	return ps
}

// Forecaster is the full multimodal model. Weights never change after
// construction; Predict is safe to call concurrently.
type Forecaster struct {
	cfg Config

	waveEncoder *spatialEncoder
	atmoEncoder *spatialEncoder
	fusionProj  *linear
	fusion      []*encoderLayer
	aggregator  *lstm
	head1       *linear
	head2       *linear
}

// New builds a forecaster with deterministic seeded initialization: the
// same seed and config always produce the same weights.
func New(cfg Config, seed int64) (*Forecaster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	// Construction order fixes the RNG stream, which is what makes a
	// (config, seed) pair reproduce identical weights.
	f := &Forecaster{cfg: cfg}
	f.waveEncoder = newSpatialEncoder(rng, cfg.WW3Channels, cfg.CNNDim)
	f.atmoEncoder = newSpatialEncoder(rng, cfg.GFSChannels, cfg.CNNDim)
	f.fusionProj = newLinear(rng, 2*cfg.CNNDim, cfg.FusionDim)
	for i := 0; i < cfg.FusionLayers; i++ {
		f.fusion = append(f.fusion, newEncoderLayer(rng, cfg.FusionDim, cfg.FusionHeads, cfg.FusionFFDim))
	}
	f.aggregator = newLSTM(rng, cfg.FusionDim, cfg.HiddenDim)
	f.head1 = newLinear(rng, cfg.HiddenDim, cfg.HiddenDim)
	f.head2 = newLinear(rng, cfg.HiddenDim, cfg.Horizon)
	return f, nil
}

// Config returns the tensor contract the forecaster was built with.
func (f *Forecaster) Config() Config { return f.cfg }

// Predict runs the forward pass: per-step spatial encoding of both
// modalities, concatenation and projection to the fusion width, stacked
// self-attention over the window, recurrent aggregation, and the linear
// forecast head. The output is [B, Horizon] of unconstrained regression
// values in meters.
func (f *Forecaster) Predict(wave, atmo *Tensor) (*Tensor, error) {
	cfg := f.cfg
	if err := wave.checkShape("wave input", -1, cfg.TimeSteps, cfg.WW3Channels, cfg.PatchSize, cfg.PatchSize); err != nil {
		return nil, err
	}
	b := wave.Dim(0)
	if err := atmo.checkShape("atmo input", b, cfg.TimeSteps, cfg.GFSChannels, cfg.PatchSize, cfg.PatchSize); err != nil {
		return nil, err
	}

	t, p := cfg.TimeSteps, cfg.PatchSize

	// Flatten batch x time so each time step is encoded independently.
	waveFlat, err := wave.Reshape(b*t, cfg.WW3Channels, p, p)
	if err != nil {
		return nil, err
	}
	atmoFlat, err := atmo.Reshape(b*t, cfg.GFSChannels, p, p)
	if err != nil {
		return nil, err
	}

	waveEmb := f.waveEncoder.forward(waveFlat) // [B*T, E]
	atmoEmb := f.atmoEncoder.forward(atmoFlat) // [B*T, E]

	// Concatenate per time step to [B*T, 2E] and project to fusion width.
	e := cfg.CNNDim
	joint := NewTensor(b*t, 2*e)
	for r := 0; r < b*t; r++ {
		copy(joint.Data[r*2*e:], waveEmb.Data[r*e:(r+1)*e])
		copy(joint.Data[r*2*e+e:], atmoEmb.Data[r*e:(r+1)*e])
	}

	fused := f.fusionProj.forward(joint)
	fused.Shape = []int{b, t, cfg.FusionDim}
	for _, layer := range f.fusion {
		fused = layer.forward(fused)
	}

	summary := f.aggregator.forward(fused)
	hidden := reluInPlace(f.head1.forward(summary))
	return f.head2.forward(hidden), nil
}

// namedParams returns every weight slice in a stable order for checkpoint
// serialization.
func (f *Forecaster) namedParams() []param {
	var ps []param
	ps = append(ps, prefixParams("wave_encoder", f.waveEncoder.params())...)
	ps = append(ps, prefixParams("atmo_encoder", f.atmoEncoder.params())...)
	ps = append(ps, prefixParams("fusion_proj", f.fusionProj.params())...)
	for i, layer := range f.fusion {
		ps = append(ps, prefixParams(fmt.Sprintf("fusion.%d", i), layer.params())...)
	}
	ps = append(ps, prefixParams("aggregator", f.aggregator.params())...)
	ps = append(ps, prefixParams("head1", f.head1.params())...)
	ps = append(ps, prefixParams("head2", f.head2.params())...)
	return ps
}
