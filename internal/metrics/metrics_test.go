package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestNoOpCollector_ImplementsCollector(t *testing.T) {
	var c Collector = NoOpCollector{}
	assert.NotPanics(t, func() {
		c.RecordDuplicate(DuplicateBatch)
		c.RecordCircuitState("storage", CircuitOpen)
	})
}
