package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhaun24/followspot/internal/dmxmodel"
	"github.com/nhaun24/followspot/internal/store"
)

func basicFixture() store.Fixture {
	return store.Fixture{
		ID: "F1", Enabled: true, Universe: 1, StartAddr: 1,
		PanCoarse: 1, PanFine: 2, TiltCoarse: 3, TiltFine: 4, Dimmer: 5,
	}
}

func TestAssembleBasicFrameScenario(t *testing.T) {
	a := New()
	f := basicFixture()
	resolve := func(store.Fixture) dmxmodel.FixtureValues {
		return dmxmodel.FixtureValues{Pan16: 0x8000, Tilt16: 0x8000, Dim8: 255}
	}
	a.Assemble([]store.Fixture{f}, resolve)

	buf := a.Buffers()[1]
	require.NotNil(t, buf)
	assert.Equal(t, []byte{0x80, 0x00, 0x80, 0x00, 0xFF}, buf.Data[0:5])
	assert.True(t, buf.Dirty)
}

func TestZeroOffsetSlotUntouched(t *testing.T) {
	a := New()
	f := basicFixture()
	f.Zoom = 0
	f.ZoomFine = 0
	resolve := func(store.Fixture) dmxmodel.FixtureValues {
		return dmxmodel.FixtureValues{Zoom16: 0xFFFF}
	}
	a.Assemble([]store.Fixture{f}, resolve)
	buf := a.Buffers()[1]
	for i := 5; i < 10; i++ {
		assert.Equal(t, byte(0), buf.Data[i], "slot %d must remain untouched when offset is 0", i+1)
	}
}

func TestUniverseRetiresOverTwoTicks(t *testing.T) {
	a := New()
	f := basicFixture()
	resolve := func(store.Fixture) dmxmodel.FixtureValues {
		return dmxmodel.FixtureValues{Pan16: 0x1234}
	}
	a.Assemble([]store.Fixture{f}, resolve)
	require.NotNil(t, a.Buffers()[1])

	// Fixture disabled: first tick with no active fixture zeroes and
	// marks Retiring, but the buffer is still present for the emitter
	// to send the final frame.
	f.Enabled = false
	a.Assemble([]store.Fixture{f}, resolve)
	buf := a.Buffers()[1]
	require.NotNil(t, buf)
	assert.True(t, buf.Retiring)
	assert.True(t, buf.Dirty)
	for _, b := range buf.Data {
		assert.Equal(t, byte(0), b)
	}

	// Second consecutive inactive tick: the buffer is removed.
	a.Assemble([]store.Fixture{f}, resolve)
	assert.Nil(t, a.Buffers()[1])
}

func TestUniverseReactivationClearsRetiring(t *testing.T) {
	a := New()
	f := basicFixture()
	resolve := func(store.Fixture) dmxmodel.FixtureValues { return dmxmodel.FixtureValues{} }
	a.Assemble([]store.Fixture{f}, resolve)

	f.Enabled = false
	a.Assemble([]store.Fixture{f}, resolve) // marks Retiring

	f.Enabled = true
	a.Assemble([]store.Fixture{f}, resolve)
	assert.False(t, a.Buffers()[1].Retiring)
}

func TestReleaseAllZeroesEveryBuffer(t *testing.T) {
	a := New()
	f := basicFixture()
	resolve := func(store.Fixture) dmxmodel.FixtureValues {
		return dmxmodel.FixtureValues{Pan16: 0xABCD, Dim8: 200}
	}
	a.Assemble([]store.Fixture{f}, resolve)

	universes := a.ReleaseAll()
	assert.Equal(t, []int{1}, universes)
	buf := a.Buffers()[1]
	assert.True(t, buf.Dirty)
	for _, b := range buf.Data {
		assert.Equal(t, byte(0), b)
	}
}
