package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(reservationsCreated.WithLabelValues("slot_conflict"))
	IncReservationCreated("slot_conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(reservationsCreated.WithLabelValues("slot_conflict")))

	before = testutil.ToFloat64(transitions.WithLabelValues("PENDING", "CONFIRMED", "noop"))
	IncTransition("PENDING", "CONFIRMED", "noop")
	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("PENDING", "CONFIRMED", "noop")))

	before = testutil.ToFloat64(kafkaMessages.WithLabelValues("publish", "t", "error"))
	ObserveKafka("publish", "t", errors.New("x"), time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(kafkaMessages.WithLabelValues("publish", "t", "error")))
}
