// Command predict runs one forecast for a station and prints the result
// and its alert evaluation as JSON. With -webhook it also POSTs the event,
// which makes it usable from cron without the full server.
//
// Usage:
//
//	go run ./cmd/predict -station 46042 -threshold 4.0
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/marinecast/wave-forecast/internal/alert"
	"github.com/marinecast/wave-forecast/internal/forecast"
	"github.com/marinecast/wave-forecast/internal/model"
	"github.com/marinecast/wave-forecast/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stationID := flag.String("station", "46042", "buoy station ID")
	threshold := flag.Float64("threshold", 4.0, "alert threshold in meters")
	checkpoint := flag.String("checkpoint", "", "model checkpoint path (empty: fresh model)")
	seed := flag.Int64("seed", 42, "weight init seed when no checkpoint is given")
	webhook := flag.String("webhook", "", "POST triggered events to this URL")
	flag.Parse()

	logger := observability.NewLogger("info", "text")

	forecaster, err := loadModel(*checkpoint, *seed)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	var notifier forecast.Notifier
	if *webhook != "" {
		notifier = alert.NewNotifier(*webhook, 10*time.Second, logger)
	}

	svc := forecast.NewService(
		forecast.NewHandle(forecaster),
		forecast.NewStaticLocator(forecast.DefaultStations()),
		forecast.NewSyntheticProvider(forecaster.Config()),
		notifier,
		nil,
		logger,
		observability.NewMetricsForTesting(),
	)

	result, ev, err := svc.Forecast(context.Background(), *stationID, *threshold)
	if err != nil {
		return err
	}

	out := struct {
		Forecast forecast.Result `json:"forecast"`
		Alert    alert.Event     `json:"alert"`
	}{Forecast: result, Alert: ev}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadModel(checkpoint string, seed int64) (*model.Forecaster, error) {
	if checkpoint != "" {
		return model.LoadCheckpoint(checkpoint)
	}
	slog.Warn("no checkpoint given, using freshly initialized weights")
	return model.New(model.DefaultConfig(), seed)
}
