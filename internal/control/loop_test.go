package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhaun24/followspot/internal/frame"
	"github.com/nhaun24/followspot/internal/input"
	"github.com/nhaun24/followspot/internal/preset"
	"github.com/nhaun24/followspot/internal/sacn"
	"github.com/nhaun24/followspot/internal/store"
)

func newTestLoop(t *testing.T) (*Loop, *store.Store, *input.VirtualSource) {
	st := store.NewStore(nil)
	virt := input.NewVirtual()
	sw := input.NewSwitch(input.OpenHardware("/dev/input/js-does-not-exist"), virt, true)
	em, err := sacn.New(nil)
	require.NoError(t, err)
	loop := New(st, sw, preset.New(st), frame.New(), em, nil, nil)
	return loop, st, virt
}

func TestTickBasicFrameScenario(t *testing.T) {
	loop, st, virt := newTestLoop(t)
	require.NoError(t, st.AddFixture(store.Fixture{
		ID: "F1", Enabled: true, Universe: 1, StartAddr: 1,
		PanCoarse: 1, PanFine: 2, TiltCoarse: 3, TiltFine: 4, Dimmer: 5,
	}))
	loop.active = true
	virt.Write(0, 0, 1, 0)

	loop.tick(time.Now(), st.Snapshot())

	buf := loop.assembler.Buffers()[1]
	require.NotNil(t, buf)
	assert.Equal(t, []byte{0x80, 0x00, 0x80, 0x00, 0xFF}, buf.Data[0:5])
}

func TestTickReleaseZeroesBuffers(t *testing.T) {
	loop, st, virt := newTestLoop(t)
	require.NoError(t, st.AddFixture(store.Fixture{
		ID: "F1", Enabled: true, Universe: 1, StartAddr: 1, Dimmer: 1,
	}))
	loop.active = true
	virt.Write(0, 0, 1, 0)
	loop.tick(time.Now(), st.Snapshot())
	require.Equal(t, byte(255), loop.assembler.Buffers()[1].Data[0])

	loop.active = false
	loop.justReleased = true
	loop.tick(time.Now(), st.Snapshot())
	assert.Equal(t, byte(0), loop.assembler.Buffers()[1].Data[0])
	assert.False(t, loop.justReleased)
}

func TestTickPublishesRuntimeState(t *testing.T) {
	loop, st, _ := newTestLoop(t)
	require.NoError(t, st.AddFixture(store.Fixture{ID: "F1", Enabled: true, Universe: 1, StartAddr: 1, Dimmer: 1}))
	loop.active = true

	now := time.Now()
	loop.tick(now, st.Snapshot())

	snap := loop.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, now, snap.LastFrameTimestamp)
	assert.Contains(t, snap.FixtureOK, "F1")
	assert.True(t, snap.FixtureOK["F1"])
}
