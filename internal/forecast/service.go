package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/marinecast/wave-forecast/internal/alert"
	"github.com/marinecast/wave-forecast/internal/model"
	"github.com/marinecast/wave-forecast/internal/observability"
)

// SampleProvider supplies the most recent assembled input window for a
// station: one WW3 tensor [1,T,Cw,P,P] and one GFS tensor [1,T,Cg,P,P]
// matching the model's contract. Production deployments assemble these
// from decoded forecast cycles via grid.Extract, grid.AlignTime and
// dataset.BuildSequences; the demo and tests use SyntheticProvider.
type SampleProvider interface {
	LatestSample(ctx context.Context, station Station) (wave, atmo *model.Tensor, err error)
}

// AlertPublisher forwards evaluated events to downstream consumers.
type AlertPublisher interface {
	Publish(ctx context.Context, ev alert.Event) error
}

// Notifier attempts best-effort webhook delivery of an event.
type Notifier interface {
	Deliver(ctx context.Context, ev alert.Event) bool
}

// Result is one station forecast: H significant-wave-height predictions at
// lead hours 1..H.
type Result struct {
	StationID string    `json:"station_id"`
	LeadHours []int     `json:"lead_hours"`
	SWH       []float64 `json:"swh"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Service wires the model handle to sample assembly, alert evaluation and
// delivery. It is safe for concurrent use: the handle is read atomically
// and the model itself is immutable.
type Service struct {
	handle    *Handle
	locator   StationLocator
	provider  SampleProvider
	notifier  Notifier
	publisher AlertPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService builds the forecast service. notifier and publisher may be nil
// when webhook delivery or topic publishing is not configured.
func NewService(
	handle *Handle,
	locator StationLocator,
	provider SampleProvider,
	notifier Notifier,
	publisher AlertPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		handle:    handle,
		locator:   locator,
		provider:  provider,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a model is loaded and serving.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.handle.Current() == nil {
		return errors.New("no model loaded")
	}
	return nil
}

// Forecast predicts SWH for a station and evaluates it against thresholdM.
// The alert event is always returned; delivery and publishing are side
// effects that cannot fail the call.
func (s *Service) Forecast(ctx context.Context, stationID string, thresholdM float64) (Result, alert.Event, error) {
	start := time.Now()

	station, err := s.locator.Locate(ctx, stationID)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return Result{}, alert.Event{}, fmt.Errorf("locate station %s: %w", stationID, err)
	}

	wave, atmo, err := s.provider.LatestSample(ctx, station)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return Result{}, alert.Event{}, fmt.Errorf("assemble sample for %s: %w", stationID, err)
	}

	out, err := s.handle.Current().Predict(wave, atmo)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return Result{}, alert.Event{}, fmt.Errorf("predict %s: %w", stationID, err)
	}

	horizon := out.Dim(1)
	swh := make([]float64, horizon)
	leadHours := make([]int, horizon)
	for i := 0; i < horizon; i++ {
		swh[i] = float64(out.Data[i])
		leadHours[i] = i + 1
	}

	result := Result{
		StationID: stationID,
		LeadHours: leadHours,
		SWH:       swh,
		IssuedAt:  clock.Now().UTC(),
	}

	ev, err := alert.Evaluate(stationID, leadHours, swh, thresholdM)
	if err != nil {
		// Lengths come from the same tensor; a mismatch here is a bug.
		return Result{}, alert.Event{}, fmt.Errorf("evaluate alert for %s: %w", stationID, err)
	}

	s.metrics.PredictionsTotal.Inc()
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	s.metrics.AlertsEvaluated.Inc()
	if ev.Triggered() {
		s.metrics.AlertsTriggered.Inc()
	}

	s.dispatch(ctx, ev)
	return result, ev, nil
}

// dispatch hands the event to the configured delivery paths. Failures are
// counted and logged, never returned.
func (s *Service) dispatch(ctx context.Context, ev alert.Event) {
	if s.notifier != nil {
		if s.notifier.Deliver(ctx, ev) {
			s.metrics.WebhookDeliveries.WithLabelValues("confirmed").Inc()
		} else {
			s.metrics.WebhookDeliveries.WithLabelValues("unconfirmed").Inc()
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("alert publish failed", "event_id", ev.ID, "error", err)
		} else {
			s.metrics.AlertsPublished.Inc()
		}
	}
}

// SyntheticProvider generates a deterministic pseudo-random sample per
// station, seeded by the station ID. It stands in for real WW3/GFS cycles
// in the demo server, cmd/predict and tests.
type SyntheticProvider struct {
	cfg model.Config
}

// NewSyntheticProvider builds a provider matching the model's contract.
func NewSyntheticProvider(cfg model.Config) *SyntheticProvider {
	return &SyntheticProvider{cfg: cfg}
}

func (p *SyntheticProvider) LatestSample(_ context.Context, station Station) (*model.Tensor, *model.Tensor, error) {
	seed := int64(0)
	for _, c := range station.ID {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	cfg := p.cfg
	wave := model.NewTensor(1, cfg.TimeSteps, cfg.WW3Channels, cfg.PatchSize, cfg.PatchSize)
	for i := range wave.Data {
		wave.Data[i] = float32(rng.NormFloat64())
	}
	atmo := model.NewTensor(1, cfg.TimeSteps, cfg.GFSChannels, cfg.PatchSize, cfg.PatchSize)
	for i := range atmo.Data {
		atmo.Data[i] = float32(rng.NormFloat64())
	}
	return wave, atmo, nil
}
