package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhaun24/followspot/internal/control"
	"github.com/nhaun24/followspot/internal/frame"
	"github.com/nhaun24/followspot/internal/input"
	"github.com/nhaun24/followspot/internal/logging"
	"github.com/nhaun24/followspot/internal/preset"
	"github.com/nhaun24/followspot/internal/sacn"
	"github.com/nhaun24/followspot/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	st := store.NewStore(nil)
	virt := input.NewVirtual()
	sw := input.NewSwitch(input.OpenHardware("/dev/input/js-does-not-exist"), virt, true)
	em, err := sacn.New(nil)
	require.NoError(t, err)
	presets := preset.New(st)
	loop := control.New(st, sw, presets, frame.New(), em, nil, nil)
	logs := logging.NewRingBuffer(100)
	s := NewServer(st, loop, sw, presets, logs, nil)
	return s, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHandleStatusReturnsRuntimeSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
}

func TestHandleSettingsMergePost(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/settings", map[string]any{"sacn_priority": 180})
	require.Equal(t, http.StatusOK, rec.Code)

	var got store.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 180, got.SacnPriority)
	assert.Equal(t, 40, got.FrameRateHz, "untouched field must survive the merge")
}

func TestHandleFixturesCreateListDelete(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/fixtures", store.Fixture{ID: "F1", Enabled: true, Universe: 1, StartAddr: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/fixtures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list fixturesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Fixtures, 1)

	rec = doJSON(t, h, http.MethodDelete, "/api/fixtures/F1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/fixtures", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Fixtures)
}

func TestHandleFixturesDeleteUnknownIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodDelete, "/api/fixtures/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleActivateAndReleaseQueueLoopRequests(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/activate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.loop.ActivatePending())

	rec = doJSON(t, h, http.MethodPost, "/api/release", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.loop.ReleasePending())
}

func TestHandleVirtualWriteAndRead(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/virtual", map[string]any{"x": 0.5, "y": -0.25})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/virtual", nil)
	var got virtualStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.5, got.X)
	assert.Equal(t, -0.25, got.Y)
}

func TestHandlePresetsCaptureRequiresLiveValues(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/presets", map[string]any{"name": "Center"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePresetRecallUnboundIsNotFound(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	require.NoError(t, st.AddFixture(store.Fixture{ID: "F1", Enabled: true, Universe: 1, StartAddr: 1, Dimmer: 1}))

	rec := doJSON(t, h, http.MethodPost, "/api/presets/unbound-id/recall", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRestartInvokesCallback(t *testing.T) {
	st := store.NewStore(nil)
	virt := input.NewVirtual()
	sw := input.NewSwitch(input.OpenHardware("/dev/input/js-does-not-exist"), virt, true)
	em, err := sacn.New(nil)
	require.NoError(t, err)
	presets := preset.New(st)
	loop := control.New(st, sw, presets, frame.New(), em, nil, nil)

	called := make(chan struct{}, 1)
	s := NewServer(st, loop, sw, presets, logging.NewRingBuffer(10), func() { called <- struct{}{} })

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/restart", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	<-called
}
