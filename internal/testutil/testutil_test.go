package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClockSequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestStaticIDGenerator(t *testing.T) {
	gen := NewStaticIDGenerator("sim-test")
	assert.Equal(t, "sim-test", gen.Generate())
	assert.Equal(t, "sim-test", gen.Generate())

	assert.Equal(t, "sim-000001", NewStaticIDGenerator("").Generate())
}
