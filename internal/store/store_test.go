package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhaun24/followspot/internal/apperr"
)

func TestAddFixtureRejectsDuplicateID(t *testing.T) {
	st := NewStore(nil)
	require.NoError(t, st.AddFixture(Fixture{ID: "F1", Universe: 1, StartAddr: 1}))
	err := st.AddFixture(Fixture{ID: "F1", Universe: 2, StartAddr: 1})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ValidationError, e.Kind)
}

func TestAddFixtureEnforcesFixtureLimit(t *testing.T) {
	st := NewStore(nil)
	for i := 0; i < FixtureLimit; i++ {
		require.NoError(t, st.AddFixture(Fixture{ID: string(rune('A' + i)), Universe: 1, StartAddr: 1}))
	}
	err := st.AddFixture(Fixture{ID: "overflow", Universe: 1, StartAddr: 1})
	require.Error(t, err)
}

func TestAddFixtureRejectsOutOfRangeChannelOffset(t *testing.T) {
	st := NewStore(nil)
	err := st.AddFixture(Fixture{ID: "F1", Universe: 1, StartAddr: 510, Dimmer: 5})
	require.Error(t, err)
	e, _ := apperr.As(err)
	assert.Equal(t, apperr.ValidationError, e.Kind)
}

func TestUpdateFixtureUnknownIDIsNotFound(t *testing.T) {
	st := NewStore(nil)
	err := st.UpdateFixture("missing", func(f *Fixture) {})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.NotFound, e.Kind)
}

func TestDeletePresetCascadesToBindings(t *testing.T) {
	st := NewStore(nil)
	p, err := st.CapturePreset("P1", "Center", 0x4000, 0xC000, 128, 0)
	require.NoError(t, err)
	require.NoError(t, st.BindButton(2, p.ID))
	require.Len(t, st.Snapshot().Bindings, 1)

	require.NoError(t, st.DeletePreset(p.ID))
	assert.Empty(t, st.Snapshot().Bindings)
}

func TestBindButtonRejectsSemanticCollision(t *testing.T) {
	st := NewStore(nil)
	p, err := st.CapturePreset("P1", "", 0, 0, 0, 0)
	require.NoError(t, err)

	// BtnActivate defaults to 5, a semantic action index.
	err = st.BindButton(DefaultSettings().BtnActivate, p.ID)
	require.Error(t, err)
}

func TestCapturePresetAutoNamesSequentially(t *testing.T) {
	st := NewStore(nil)
	p1, err := st.CapturePreset("P1", "", 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Preset 1", p1.Name)

	p2, err := st.CapturePreset("P2", "", 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Preset 2", p2.Name)

	require.NoError(t, st.DeletePreset(p1.ID))
	p3, err := st.CapturePreset("P3", "", 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Preset 1", p3.Name, "the smallest unused number is reused")
}

func TestFixturesCSVRoundTrips(t *testing.T) {
	fixtures := []Fixture{
		{ID: "F1", Enabled: true, Universe: 1, StartAddr: 1, PanCoarse: 1, PanFine: 2, Dimmer: 5, InvertTilt: true, PanBias: -10, StatusLedSlot: 1},
	}
	csv := FixturesToCSV(fixtures)
	got, err := CSVToFixtures(csv)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fixtures[0].ID, got[0].ID)
	assert.Equal(t, fixtures[0].Universe, got[0].Universe)
	assert.Equal(t, fixtures[0].InvertTilt, got[0].InvertTilt)
	assert.Equal(t, fixtures[0].PanBias, got[0].PanBias)
}

func TestSnapshotCloneIsIndependentOfSource(t *testing.T) {
	st := NewStore(nil)
	require.NoError(t, st.AddFixture(Fixture{ID: "F1", Universe: 1, StartAddr: 1}))
	snap := st.Snapshot()

	require.NoError(t, st.AddFixture(Fixture{ID: "F2", Universe: 1, StartAddr: 2}))
	assert.Len(t, snap.Fixtures, 1, "a previously read snapshot must not observe a later write")
	assert.Len(t, st.Snapshot().Fixtures, 2)
}

func TestFixtureJSONRoundTripPreservesEverySplitField(t *testing.T) {
	f := Fixture{
		ID: "F1", Enabled: true, Universe: 1, StartAddr: 1,
		PanCoarse: 1, PanFine: 2, TiltCoarse: 3, TiltFine: 4,
		Dimmer: 5, Zoom: 6, ZoomFine: 7,
		InvertPan: true, InvertTilt: true, PanBias: -10, TiltBias: 20,
	}
	raw, err := json.Marshal(f)
	require.NoError(t, err)

	var got Fixture
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, f, got, "no field sharing a json tag with another may be dropped on marshal or unmarshal")
}

func TestSettingsJSONRoundTripPreservesLimitFields(t *testing.T) {
	s := DefaultSettings()
	s.PanLimitMin, s.PanLimitMax = 10000, 20000
	s.TiltLimitMin, s.TiltLimitMax = 5000, 25000

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got Settings
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, s.PanLimitMin, got.PanLimitMin)
	assert.Equal(t, s.PanLimitMax, got.PanLimitMax)
	assert.Equal(t, s.TiltLimitMin, got.TiltLimitMin)
	assert.Equal(t, s.TiltLimitMax, got.TiltLimitMax)
}

func TestEnsureCIDGeneratesOnceWhenAbsent(t *testing.T) {
	st := NewStore(nil)
	require.Equal(t, [16]byte{}, st.Snapshot().Settings.CID)

	require.NoError(t, st.EnsureCID())
	first := st.Snapshot().Settings.CID
	assert.NotEqual(t, [16]byte{}, first)

	require.NoError(t, st.EnsureCID())
	assert.Equal(t, first, st.Snapshot().Settings.CID, "a second call must not regenerate an existing cid")
}
