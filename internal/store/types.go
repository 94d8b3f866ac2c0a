// Package store implements the config store: the in-memory
// authoritative record of Settings, Fixtures, Presets, and
// ButtonBindings, with atomic snapshot+apply, admission validation,
// pubsub change notifications, and JSON+CSV persistence.
package store

// BindMode selects how universes are addressed on the wire.
type BindMode string

const (
	BindMulticast BindMode = "multicast"
	BindUnicast   BindMode = "unicast"
)

// Settings is the singleton settings record, spec.md §3.
type Settings struct {
	FrameRateHz   int     `json:"frame_rate_hz"`
	Deadzone      float64 `json:"deadzone"`
	Expo          float64 `json:"expo"`
	FineModeGain  float64 `json:"fine_mode_gain"`
	ThrottleInvert bool   `json:"throttle_invert"`

	ZoomFromZAxis bool    `json:"zoom_from_zaxis"`
	ZoomDeadzone  float64 `json:"zoom_deadzone"`
	ZoomExpo      float64 `json:"zoom_expo"`
	ZoomInvert    bool    `json:"zoom_invert"`

	SacnPriority       int      `json:"sacn_priority"`
	SacnBindAddresses  []string `json:"sacn_bind_addresses"`
	UniverseBindMode   BindMode `json:"universe_bind_mode"`
	UnicastTargets     map[int]string `json:"unicast_targets"` // universe -> IPv4, used when UniverseBindMode == unicast

	GpioPowerPin      int   `json:"gpio_power_pin"`
	GpioErrorPin      int   `json:"gpio_error_pin"`
	GpioFixtureLedPins []int `json:"gpio_fixture_led_pins"`

	// Semantic-action button indices.
	BtnActivate     int `json:"btn_activate"`
	BtnRelease      int `json:"btn_release"`
	BtnFlash10      int `json:"btn_flash10"`
	BtnDimOff       int `json:"btn_dim_off"`
	BtnFineMode     int `json:"btn_fine_mode"`
	BtnZoomMod      int `json:"btn_zoom_mod"`

	// Soft pan/tilt limits, ported from the original controller;
	// 0/0 on a pair disables that clamp. See SPEC_FULL.md §3.
	PanLimitMin  uint16 `json:"pan_limit_min,omitempty"`
	PanLimitMax  uint16 `json:"pan_limit_max,omitempty"`
	TiltLimitMin uint16 `json:"tilt_limit_min,omitempty"`
	TiltLimitMax uint16 `json:"tilt_limit_max,omitempty"`

	MultiUniverseEnabled bool `json:"multi_universe_enabled"`
	DefaultUniverse      int  `json:"default_universe"`

	CID [16]byte `json:"cid"`

	// Debug sACN frame logging, ported from the original's
	// debug_log_sacn/debug_log_mode.
	DebugLogSacn     bool   `json:"debug_log_sacn"`
	DebugLogMode     string `json:"debug_log_mode"` // summary | nonzero | full
	DebugLogInterval int    `json:"debug_log_interval_ms"`
}

// DefaultSettings returns the spec.md §3 default singleton.
func DefaultSettings() Settings {
	return Settings{
		FrameRateHz:      40,
		Deadzone:         0.08,
		Expo:             0.35,
		FineModeGain:     0.20,
		ZoomDeadzone:     0.05,
		ZoomExpo:         0.40,
		SacnPriority:     150,
		UniverseBindMode: BindMulticast,
		BtnActivate:      5,
		BtnRelease:       1,
		BtnFlash10:       0,
		BtnDimOff:        3,
		BtnFineMode:      4,
		BtnZoomMod:       6,
		DefaultUniverse:  1,
		DebugLogMode:     "summary",
		DebugLogInterval: 500,
	}
}

// Fixture is one lighting fixture, spec.md §3.
type Fixture struct {
	ID        string `json:"id"`
	Enabled   bool   `json:"enabled"`
	Universe  int    `json:"universe"`
	StartAddr int    `json:"start_addr"`

	PanCoarse        int `json:"pan_coarse"`
	PanFine          int `json:"pan_fine"`
	TiltCoarse       int `json:"tilt_coarse"`
	TiltFine         int `json:"tilt_fine"`
	Dimmer           int `json:"dimmer"`
	Zoom             int `json:"zoom"`
	ZoomFine         int `json:"zoom_fine"`
	ColorTempChannel int `json:"color_temp_channel"`
	ColorTempValue   int `json:"color_temp_value"`

	InvertPan  bool  `json:"invert_pan"`
	InvertTilt bool  `json:"invert_tilt"`
	PanBias    int16 `json:"pan_bias"`
	TiltBias   int16 `json:"tilt_bias"`

	StatusLedSlot int `json:"status_led"` // 0 = none, else 1..N
}

// Preset is a captured position snapshot, spec.md §3.
type Preset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Pan16  uint16 `json:"pan16"`
	Tilt16 uint16 `json:"tilt16"`
	Dim8   uint8  `json:"dim8"`
	Zoom16 uint16 `json:"zoom16"`
}

// ButtonBinding associates a button index with a preset id.
type ButtonBinding struct {
	Button int    `json:"button"`
	Preset string `json:"preset"`
}
