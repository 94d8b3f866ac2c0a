package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nhaun24/followspot/internal/apperr"
)

// Persister is the disk-persistence abstraction: a JSON document for
// the full snapshot, plus a CSV backup of the fixture list alone, per
// spec.md §6. Writes are atomic (temp file + rename).
type Persister interface {
	Save(*Snapshot) error
	Load() (*Snapshot, error)
}

// FilePersister implements Persister against settings.json and
// fixtures.csv in a directory, mirroring the original controller's
// SETTINGS_PATH/FIXTURES_CSV layout.
type FilePersister struct {
	SettingsPath string
	FixturesCSV  string
}

func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{
		SettingsPath: filepath.Join(dir, "settings.json"),
		FixturesCSV:  filepath.Join(dir, "fixtures.csv"),
	}
}

func (p *FilePersister) Save(s *Snapshot) error {
	if err := atomicWriteJSON(p.SettingsPath, s); err != nil {
		return apperr.Persistence("failed to write settings.json", err)
	}
	if err := atomicWriteFile(p.FixturesCSV, []byte(FixturesToCSV(s.Fixtures))); err != nil {
		return apperr.Persistence("failed to write fixtures.csv", err)
	}
	return nil
}

func (p *FilePersister) Load() (*Snapshot, error) {
	snap := &Snapshot{Settings: DefaultSettings()}
	if b, err := os.ReadFile(p.SettingsPath); err == nil && len(b) > 0 {
		if err := json.Unmarshal(b, snap); err != nil {
			return nil, apperr.Persistence("failed to parse settings.json", err)
		}
		return snap, nil
	}
	// settings.json missing/empty: fall back to fixtures.csv if present.
	if b, err := os.ReadFile(p.FixturesCSV); err == nil {
		fixtures, ferr := CSVToFixtures(string(b))
		if ferr == nil && len(fixtures) > 0 {
			if len(fixtures) > FixtureLimit {
				fixtures = fixtures[:FixtureLimit]
			}
			snap.Fixtures = fixtures
		}
	}
	return snap, nil
}

func atomicWriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, b)
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// FixtureFields is the CSV column order, spec.md §6.
var FixtureFields = []string{
	"id", "enabled", "universe", "start_addr",
	"pan_coarse", "pan_fine", "tilt_coarse", "tilt_fine",
	"dimmer", "zoom", "zoom_fine",
	"color_temp_channel", "color_temp_value",
	"invert_pan", "invert_tilt", "pan_bias", "tilt_bias",
	"status_led",
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FixturesToCSV renders fixtures per the spec.md §6 CSV schema.
func FixturesToCSV(fixtures []Fixture) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(FixtureFields)
	for _, f := range fixtures {
		row := []string{
			f.ID,
			boolStr(f.Enabled),
			strconv.Itoa(f.Universe),
			strconv.Itoa(f.StartAddr),
			strconv.Itoa(f.PanCoarse),
			strconv.Itoa(f.PanFine),
			strconv.Itoa(f.TiltCoarse),
			strconv.Itoa(f.TiltFine),
			strconv.Itoa(f.Dimmer),
			strconv.Itoa(f.Zoom),
			strconv.Itoa(f.ZoomFine),
			strconv.Itoa(f.ColorTempChannel),
			strconv.Itoa(f.ColorTempValue),
			boolStr(f.InvertPan),
			boolStr(f.InvertTilt),
			strconv.Itoa(int(f.PanBias)),
			strconv.Itoa(int(f.TiltBias)),
			strconv.Itoa(f.StatusLedSlot),
		}
		_ = w.Write(row)
	}
	w.Flush()
	return sb.String()
}

// CSVToFixtures parses the spec.md §6 CSV schema, normalizing
// "True"/"False" strings to booleans at admission, per SPEC_FULL.md's
// ambient-normalization rule.
func CSVToFixtures(text string) ([]Fixture, error) {
	r := csv.NewReader(strings.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse fixtures csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	get := func(row []string, key string) string {
		if i, ok := idx[key]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}
	atoi := func(s string) int {
		v, _ := strconv.Atoi(strings.TrimSpace(s))
		return v
	}
	toBool := func(s string) bool {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "on":
			return true
		default:
			return false
		}
	}
	out := make([]Fixture, 0, len(records)-1)
	for _, row := range records[1:] {
		f := Fixture{
			ID:               strings.TrimSpace(get(row, "id")),
			Enabled:          toBool(orDefault(get(row, "enabled"), "True")),
			Universe:         atoi(get(row, "universe")),
			StartAddr:        atoi(get(row, "start_addr")),
			PanCoarse:        atoi(get(row, "pan_coarse")),
			PanFine:          atoi(get(row, "pan_fine")),
			TiltCoarse:       atoi(get(row, "tilt_coarse")),
			TiltFine:         atoi(get(row, "tilt_fine")),
			Dimmer:           atoi(get(row, "dimmer")),
			Zoom:             atoi(get(row, "zoom")),
			ZoomFine:         atoi(get(row, "zoom_fine")),
			ColorTempChannel: atoi(get(row, "color_temp_channel")),
			ColorTempValue:   atoi(get(row, "color_temp_value")),
			InvertPan:        toBool(orDefault(get(row, "invert_pan"), "False")),
			InvertTilt:       toBool(orDefault(get(row, "invert_tilt"), "False")),
			PanBias:          int16(atoi(get(row, "pan_bias"))),
			TiltBias:         int16(atoi(get(row, "tilt_bias"))),
			StatusLedSlot:    normalizeStatusLedSlot(atoi(get(row, "status_led"))),
		}
		out = append(out, f)
	}
	return out, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func normalizeStatusLedSlot(slot int) int {
	if slot < 1 || slot > FixtureLimit {
		return 0
	}
	return slot
}
