package dmxmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp16BoundsToUint16Range(t *testing.T) {
	assert.Equal(t, uint16(0), Clamp16(-5))
	assert.Equal(t, uint16(65535), Clamp16(70000))
	assert.Equal(t, uint16(1234), Clamp16(1234))
}

func TestClamp8BoundsToUint8Range(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp8(-1))
	assert.Equal(t, uint8(255), Clamp8(300))
	assert.Equal(t, uint8(128), Clamp8(128))
}

func TestCoarseFineSplitRoundTrips(t *testing.T) {
	v := uint16(0x8001)
	assert.Equal(t, byte(0x80), Coarse(v))
	assert.Equal(t, byte(0x01), Fine(v))
}
