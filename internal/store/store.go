package store

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/btittelbach/pubsub"
	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/apperr"
)

// FixtureLimit is the admission-enforced cap on the number of
// fixtures, spec.md §3. The original controller only enforced this in
// the UI; here validateSnapshot rejects any write that exceeds it.
const FixtureLimit = 6

// ChangeTopic is the pubsub topic published to on every successful
// mutation, grounded on the donor corpus's pubsub usage
// (realraum-door_and_sensors).
const ChangeTopic = "config.changed"

// Snapshot is the immutable, atomically-swapped view of the store.
// The control loop reads one Snapshot pointer per tick and uses it for
// the whole tick, per spec.md §5.
type Snapshot struct {
	Settings Settings        `json:"settings"`
	Fixtures []Fixture       `json:"fixtures"`
	Presets  []Preset        `json:"presets"`
	Bindings []ButtonBinding `json:"bindings"`
}

func (s *Snapshot) clone() *Snapshot {
	n := &Snapshot{Settings: s.Settings}
	n.Fixtures = append([]Fixture(nil), s.Fixtures...)
	n.Presets = append([]Preset(nil), s.Presets...)
	n.Bindings = append([]ButtonBinding(nil), s.Bindings...)
	n.Settings.SacnBindAddresses = append([]string(nil), s.Settings.SacnBindAddresses...)
	n.Settings.GpioFixtureLedPins = append([]int(nil), s.Settings.GpioFixtureLedPins...)
	if s.Settings.UnicastTargets != nil {
		n.Settings.UnicastTargets = make(map[int]string, len(s.Settings.UnicastTargets))
		for k, v := range s.Settings.UnicastTargets {
			n.Settings.UnicastTargets[k] = v
		}
	}
	return n
}

// Store is the Config store. Reads take no lock and never block on a
// write. Writes take the exclusive writeMu to validate and swap the
// snapshot pointer, and keep holding it while the persister saves the
// new snapshot, so one write's disk save delays the next write.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	writeMu sync.Mutex
	ps      *pubsub.PubSub

	persist Persister
}

// NewStore builds a Store with default settings and no fixtures.
func NewStore(p Persister) *Store {
	st := &Store{ps: pubsub.New(16), persist: p}
	snap := &Snapshot{Settings: DefaultSettings()}
	st.cur.Store(snap)
	return st
}

// Snapshot returns the current immutable snapshot. Safe for concurrent
// use without locking; callers must not mutate the returned value's
// slices in place.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load()
}

// Subscribe returns a channel of ChangeTopic notifications.
func (s *Store) Subscribe() chan interface{} {
	return s.ps.Sub(ChangeTopic)
}

func (s *Store) Unsubscribe(ch chan interface{}) {
	s.ps.Unsub(ch, ChangeTopic)
}

func (s *Store) publish() {
	s.ps.Pub(struct{}{}, ChangeTopic)
}

// withWrite runs fn against a clone of the current snapshot; if fn
// succeeds the clone is validated and swapped in, persisted, and a
// change notification is published.
func (s *Store) withWrite(fn func(*Snapshot) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.cur.Load().clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := validateSnapshot(next); err != nil {
		return err
	}
	s.cur.Store(next)
	s.publish()
	if s.persist != nil {
		if err := s.persist.Save(next); err != nil {
			log.Error().Err(err).Msg("persistence save failed; in-memory state retained")
			return apperr.Persistence("failed to save config", err)
		}
	}
	return nil
}

func validateSnapshot(s *Snapshot) error {
	if len(s.Fixtures) > FixtureLimit {
		return apperr.Validation("too many fixtures: %d > %d", len(s.Fixtures), FixtureLimit)
	}
	seen := make(map[string]bool, len(s.Fixtures))
	for _, f := range s.Fixtures {
		if f.ID == "" {
			return apperr.Validation("fixture id must not be empty")
		}
		if seen[f.ID] {
			return apperr.Validation("duplicate fixture id %q", f.ID)
		}
		seen[f.ID] = true
		if err := validateFixtureRanges(f); err != nil {
			return err
		}
	}

	semantic := map[int]bool{
		s.Settings.BtnActivate: true,
		s.Settings.BtnRelease:  true,
		s.Settings.BtnFlash10:  true,
		s.Settings.BtnDimOff:   true,
		s.Settings.BtnFineMode: true,
		s.Settings.BtnZoomMod:  true,
	}
	boundButtons := make(map[int]string, len(s.Bindings))
	for _, b := range s.Bindings {
		if semantic[b.Button] {
			return apperr.Validation("button %d collides with a semantic action", b.Button)
		}
		if prev, ok := boundButtons[b.Button]; ok {
			return apperr.Validation("button %d already bound to preset %q", b.Button, prev)
		}
		boundButtons[b.Button] = b.Preset
	}
	return nil
}

// validateFixtureRanges enforces: for each assigned channel offset
// k>0, start_addr+k-1 <= 512, and start_addr/universe are in range.
func validateFixtureRanges(f Fixture) error {
	if f.Universe < 1 || f.Universe > 63999 {
		return apperr.Validation("fixture %q: universe %d out of range", f.ID, f.Universe)
	}
	if f.StartAddr < 1 || f.StartAddr > 512 {
		return apperr.Validation("fixture %q: start_addr %d out of range", f.ID, f.StartAddr)
	}
	offsets := []int{
		f.PanCoarse, f.PanFine, f.TiltCoarse, f.TiltFine,
		f.Dimmer, f.Zoom, f.ZoomFine, f.ColorTempChannel,
	}
	for _, k := range offsets {
		if k <= 0 {
			continue
		}
		if f.StartAddr+k-1 > 512 || f.StartAddr+k-1 < 1 {
			return apperr.Validation("fixture %q: channel offset %d out of range at start_addr %d", f.ID, k, f.StartAddr)
		}
	}
	return nil
}

// EnsureCID generates the 16-byte stable sACN CID once, if absent, per
// spec.md §4.5/§6. Safe to call unconditionally on startup: a no-op
// once a CID has been persisted.
func (s *Store) EnsureCID() error {
	if s.cur.Load().Settings.CID != [16]byte{} {
		return nil
	}
	return s.withWrite(func(snap *Snapshot) error {
		if snap.Settings.CID == [16]byte{} {
			var cid [16]byte
			_, _ = rand.Read(cid[:])
			snap.Settings.CID = cid
		}
		return nil
	})
}

// UpdateSettings merges patch fields into Settings via fn, which should
// mutate the passed-in Settings in place.
func (s *Store) UpdateSettings(fn func(*Settings)) error {
	return s.withWrite(func(snap *Snapshot) error {
		fn(&snap.Settings)
		if snap.Settings.CID == [16]byte{} {
			var cid [16]byte
			_, _ = rand.Read(cid[:])
			snap.Settings.CID = cid
		}
		return nil
	})
}

// AddFixture admits a new fixture, enforcing uniqueness and the
// fixture limit (spec.md §3 invariants).
func (s *Store) AddFixture(f Fixture) error {
	return s.withWrite(func(snap *Snapshot) error {
		for _, existing := range snap.Fixtures {
			if existing.ID == f.ID {
				return apperr.Validation("fixture id %q already exists", f.ID)
			}
		}
		snap.Fixtures = append(snap.Fixtures, f)
		return nil
	})
}

// UpdateFixture applies fn to the fixture with the given id.
func (s *Store) UpdateFixture(id string, fn func(*Fixture)) error {
	return s.withWrite(func(snap *Snapshot) error {
		for i := range snap.Fixtures {
			if snap.Fixtures[i].ID == id {
				fn(&snap.Fixtures[i])
				return nil
			}
		}
		return apperr.NotFoundf("fixture %q not found", id)
	})
}

// DeleteFixture removes the fixture with the given id.
func (s *Store) DeleteFixture(id string) error {
	return s.withWrite(func(snap *Snapshot) error {
		for i := range snap.Fixtures {
			if snap.Fixtures[i].ID == id {
				snap.Fixtures = append(snap.Fixtures[:i], snap.Fixtures[i+1:]...)
				return nil
			}
		}
		return apperr.NotFoundf("fixture %q not found", id)
	})
}

// ReplaceFixtures replaces the whole fixture list (used by CSV bulk
// import), clamped to FixtureLimit as the original controller did.
func (s *Store) ReplaceFixtures(fixtures []Fixture) error {
	return s.withWrite(func(snap *Snapshot) error {
		if len(fixtures) > FixtureLimit {
			fixtures = fixtures[:FixtureLimit]
		}
		snap.Fixtures = fixtures
		return nil
	})
}

// CapturePreset appends a new preset with an auto-assigned name if
// name is empty, "Preset N" with N the smallest unused integer.
func (s *Store) CapturePreset(id, name string, pan16, tilt16 uint16, dim8 uint8, zoom16 uint16) (Preset, error) {
	var created Preset
	err := s.withWrite(func(snap *Snapshot) error {
		if name == "" {
			name = nextPresetName(snap.Presets)
		}
		created = Preset{ID: id, Name: name, Pan16: pan16, Tilt16: tilt16, Dim8: dim8, Zoom16: zoom16}
		snap.Presets = append(snap.Presets, created)
		return nil
	})
	return created, err
}

func nextPresetName(presets []Preset) string {
	used := make(map[int]bool, len(presets))
	for _, p := range presets {
		var n int
		if _, err := fmt.Sscanf(p.Name, "Preset %d", &n); err == nil {
			used[n] = true
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return fmt.Sprintf("Preset %d", n)
}

// UpdatePreset replaces the values or renames the preset with id.
func (s *Store) UpdatePreset(id string, fn func(*Preset)) error {
	return s.withWrite(func(snap *Snapshot) error {
		for i := range snap.Presets {
			if snap.Presets[i].ID == id {
				fn(&snap.Presets[i])
				return nil
			}
		}
		return apperr.NotFoundf("preset %q not found", id)
	})
}

// DeletePreset removes the preset and cascades to any binding
// referencing it, per spec.md §4.6.
func (s *Store) DeletePreset(id string) error {
	return s.withWrite(func(snap *Snapshot) error {
		found := false
		for i := range snap.Presets {
			if snap.Presets[i].ID == id {
				snap.Presets = append(snap.Presets[:i], snap.Presets[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return apperr.NotFoundf("preset %q not found", id)
		}
		kept := snap.Bindings[:0]
		for _, b := range snap.Bindings {
			if b.Preset != id {
				kept = append(kept, b)
			}
		}
		snap.Bindings = kept
		return nil
	})
}

// BindButton associates button with preset id, or removes the binding
// when id is "". Rejects collisions with semantic-action indices.
func (s *Store) BindButton(button int, id string) error {
	return s.withWrite(func(snap *Snapshot) error {
		kept := snap.Bindings[:0]
		for _, b := range snap.Bindings {
			if b.Button != button {
				kept = append(kept, b)
			}
		}
		snap.Bindings = kept
		if id != "" {
			snap.Bindings = append(snap.Bindings, ButtonBinding{Button: button, Preset: id})
		}
		return nil
	})
}

// SortedPresets returns presets ordered by name for stable listing.
func SortedPresets(presets []Preset) []Preset {
	out := append([]Preset(nil), presets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadFrom seeds the store from a previously-loaded snapshot, e.g. at
// process startup after reading the persisted JSON/CSV documents. It
// bypasses validation-on-write notifications beyond a single publish.
func (s *Store) LoadFrom(snap *Snapshot) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.cur.Store(snap)
	s.publish()
}
