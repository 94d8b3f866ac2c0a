package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/nhaun24/followspot/internal/apperr"
	"github.com/nhaun24/followspot/internal/store"
)

type fixturesListResponse struct {
	Fixtures             []store.Fixture `json:"fixtures"`
	MultiUniverseEnabled bool            `json:"multi_universe_enabled"`
}

// handleFixturesCollection implements GET/POST /api/fixtures.
func (s *Server) handleFixturesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.st.Snapshot()
		writeJSON(w, http.StatusOK, fixturesListResponse{
			Fixtures:             snap.Fixtures,
			MultiUniverseEnabled: snap.Settings.MultiUniverseEnabled,
		})
	case http.MethodPost:
		var f store.Fixture
		if err := decodeJSON(r, &f); err != nil {
			writeError(w, err)
			return
		}
		if err := s.st.AddFixture(f); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleFixtureItemOrSpecial routes everything under /api/fixtures/:
// PATCH/DELETE /api/fixtures/{id}, POST /api/fixtures/import (CSV bulk
// replace), and POST /api/fixtures/config (multi_universe_enabled).
func (s *Server) handleFixtureItemOrSpecial(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/fixtures/")

	switch rest {
	case "import":
		s.handleFixturesImport(w, r)
		return
	case "config":
		s.handleFixturesConfig(w, r)
		return
	}

	id := rest
	if id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "missing fixture id"})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch store.Fixture
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, err)
			return
		}
		if err := s.st.UpdateFixture(id, func(f *store.Fixture) { *f = patch; f.ID = id }); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	case http.MethodDelete:
		if err := s.st.DeleteFixture(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleFixturesImport implements POST /api/fixtures/import: a raw
// CSV body replaces the whole fixture list, mirroring the original
// controller's bulk-load-from-file workflow.
func (s *Server) handleFixturesImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.Validation("failed to read body: %v", err))
		return
	}
	fixtures, err := store.CSVToFixtures(string(body))
	if err != nil {
		writeError(w, apperr.Validation("%v", err))
		return
	}
	if err := s.st.ReplaceFixtures(fixtures); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fixturesListResponse{
		Fixtures:             s.st.Snapshot().Fixtures,
		MultiUniverseEnabled: s.st.Snapshot().Settings.MultiUniverseEnabled,
	})
}

type fixturesConfigRequest struct {
	MultiUniverseEnabled *bool `json:"multi_universe_enabled"`
}

// handleFixturesConfig implements POST /api/fixtures/config, the
// multi_universe_enabled toggle spec.md §4.5 calls out separately from
// the per-fixture collection.
func (s *Server) handleFixturesConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req fixturesConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MultiUniverseEnabled == nil {
		writeError(w, apperr.Validation("multi_universe_enabled is required"))
		return
	}
	if err := s.st.UpdateSettings(func(set *store.Settings) {
		set.MultiUniverseEnabled = *req.MultiUniverseEnabled
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"multi_universe_enabled": *req.MultiUniverseEnabled})
}
