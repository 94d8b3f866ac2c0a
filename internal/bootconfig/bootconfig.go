// Package bootconfig loads the process bootstrap configuration:
// everything needed before the config store exists (listen address,
// sACN bind addresses, GPIO pin numbers, file paths, log level). This
// is distinct from store.Settings, which is runtime-editable via the
// HTTP API and persisted separately. Load/Save and the flag-overrides-
// YAML precedence are ported from ledcube/internal/config/config.go
// and ledcube/cmd/ledcube/main.go.
package bootconfig

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the bootstrap document, normally at config.yaml next to
// the binary.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	ConfigDir string `yaml:"config_dir"` // where settings.json/fixtures.csv live
	LogLevel  string `yaml:"log_level"`
	LogRingSize int  `yaml:"log_ring_size"`

	JoystickDevice string `yaml:"joystick_device"`

	SacnBindAddresses []string `yaml:"sacn_bind_addresses"`

	GpioPowerPin       int   `yaml:"gpio_power_pin"`
	GpioErrorPin       int   `yaml:"gpio_error_pin"`
	GpioFixtureLedPins []int `yaml:"gpio_fixture_led_pins"`
}

func defaults() Config {
	return Config{
		HTTPAddr:    ":8080",
		ConfigDir:   ".",
		LogLevel:    "info",
		LogRingSize: 500,
		JoystickDevice: "/dev/input/js0",
	}
}

// Load reads the YAML document at path; a missing file is not fatal,
// defaults are returned, matching ledcube/cmd/ledcube/main.go's
// "config.yaml can override most [flags]" tolerance of an absent file.
func Load(path string) (Config, error) {
	c := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func Save(path string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Flags registers the process's command-line flag overrides and
// returns a closure that applies them on top of a loaded Config,
// following the "config overrides flags where available" precedence
// of ledcube/cmd/ledcube/main.go — here inverted, since this
// controller treats flags as the final override layer instead.
func Flags(fs *flag.FlagSet) func(*Config) {
	addr := fs.String("addr", "", "HTTP listen address (overrides config.yaml)")
	configDir := fs.String("config-dir", "", "directory holding settings.json/fixtures.csv")
	logLevel := fs.String("log-level", "", "log level: debug|info|warn|error")
	joystick := fs.String("joystick", "", "joystick device path, e.g. /dev/input/js0")

	return func(c *Config) {
		if *addr != "" {
			c.HTTPAddr = *addr
		}
		if *configDir != "" {
			c.ConfigDir = *configDir
		}
		if *logLevel != "" {
			c.LogLevel = *logLevel
		}
		if *joystick != "" {
			c.JoystickDevice = *joystick
		}
	}
}
