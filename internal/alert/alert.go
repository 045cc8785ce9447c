// Package alert turns horizon forecasts into threshold-exceedance events
// and handles their best-effort delivery.
//
// Evaluation and delivery are deliberately separate. Evaluate is a pure
// function: identical inputs always produce identical events, including the
// event ID, which is a deterministic SHA-256 over the event's key fields so
// replays and retries are idempotent downstream. Delivery lives in
// Notifier; a failed or slow webhook can never fail an evaluation.
package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrShapeMismatch is returned when the lead-hour labels and predictions
// disagree in length.
var ErrShapeMismatch = errors.New("alert: lead hours and predictions differ in length")

// Event is one threshold evaluation of a station forecast. Immutable once
// created. Exceed is parallel to SWH, 1 where the prediction meets or
// exceeds the threshold.
type Event struct {
	ID         string    `json:"id"`
	StationID  string    `json:"station_id"`
	ThresholdM float64   `json:"threshold_m"`
	LeadHours  []int     `json:"lead_hours"`
	SWH        []float64 `json:"swh"`
	Exceed     []int     `json:"exceed"`
}

// Triggered reports whether any lead hour exceeds the threshold.
func (e Event) Triggered() bool {
	for _, x := range e.Exceed {
		if x == 1 {
			return true
		}
	}
	return false
}

// Evaluate compares each predicted value against the threshold:
// exceed[i] = predicted[i] >= threshold. leadHours and predicted must have
// equal length or the call fails with ErrShapeMismatch.
func Evaluate(stationID string, leadHours []int, predicted []float64, thresholdM float64) (Event, error) {
	if len(leadHours) != len(predicted) {
		return Event{}, fmt.Errorf("%w: %d lead hours, %d predictions",
			ErrShapeMismatch, len(leadHours), len(predicted))
	}

	exceed := make([]int, len(predicted))
	for i, v := range predicted {
		if v >= thresholdM {
			exceed[i] = 1
		}
	}

	hours := make([]int, len(leadHours))
	copy(hours, leadHours)
	swh := make([]float64, len(predicted))
	copy(swh, predicted)

	ev := Event{
		StationID:  stationID,
		ThresholdM: thresholdM,
		LeadHours:  hours,
		SWH:        swh,
		Exceed:     exceed,
	}
	ev.ID = generateID(ev)
	return ev, nil
}

// generateID hashes the event's key fields. The same station, threshold and
// predictions always produce the same ID, which lets consumers dedupe
// replayed events without coordination.
func generateID(ev Event) string {
	var sb strings.Builder
	sb.WriteString(ev.StationID)
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatFloat(ev.ThresholdM, 'g', -1, 64))
	for i := range ev.SWH {
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(ev.LeadHours[i]))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(ev.SWH[i], 'g', -1, 64))
	}
	hash := sha256.Sum256([]byte(sb.String()))
	return "swh-" + hex.EncodeToString(hash[:8])
}
