package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinecast/wave-forecast/internal/alert"
)

func TestSerializeToMessage(t *testing.T) {
	ev, err := alert.Evaluate("46042", []int{1, 2, 3}, []float64{3.9, 4.0, 4.5}, 4.0)
	require.NoError(t, err)

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte(ev.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"station_id":"46042"`)
	assert.Contains(t, string(msg.Value), `"exceed":[0,1,1]`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "station_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("46042"), msg.Headers[0].Value)
	assert.Equal(t, "triggered", msg.Headers[1].Key)
	assert.Equal(t, []byte("true"), msg.Headers[1].Value)
}

func TestSerializeToMessage_NotTriggered(t *testing.T) {
	ev, err := alert.Evaluate("44013", []int{1}, []float64{1.2}, 4.0)
	require.NoError(t, err)

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, []byte("false"), msg.Headers[1].Value)
}
