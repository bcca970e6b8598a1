package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buckleypaul/jflash/internal/jlink"
)

const (
	DefaultInterface = "SWD"
	DefaultSpeedKHz  = 4000
	DefaultBaudRate  = 115200
	DefaultTimeout   = "60s"

	dirName = ".jflash"
)

// Config holds all jflash configuration.
type Config struct {
	Device          string `json:"device,omitempty" yaml:"device,omitempty"`
	Interface       string `json:"interface,omitempty" yaml:"interface,omitempty"`
	SpeedKHz        int    `json:"speed_khz,omitempty" yaml:"speed_khz,omitempty"`
	ConnectedMarker string `json:"connected_marker,omitempty" yaml:"connected_marker,omitempty"`
	ExeName         string `json:"exe_name,omitempty" yaml:"exe_name,omitempty"`
	JLinkDir        string `json:"jlink_dir,omitempty" yaml:"jlink_dir,omitempty"`
	// Timeout is a Go duration string; "0" disables the limit.
	Timeout        string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	SerialPort     string `json:"serial_port,omitempty" yaml:"serial_port,omitempty"`
	SerialBaudRate int    `json:"serial_baud_rate,omitempty" yaml:"serial_baud_rate,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Interface:      DefaultInterface,
		SpeedKHz:       DefaultSpeedKHz,
		Timeout:        DefaultTimeout,
		SerialBaudRate: DefaultBaudRate,
	}
}

// Dir returns the project config directory under root.
func Dir(root string) string {
	return filepath.Join(root, dirName)
}

// Load reads and merges global and project configs.
// Order: defaults → global (~/.config/jflash/config.{json,yaml}) → project (.jflash/config.{json,yaml}).
// Within a directory the YAML file is applied after the JSON file.
func Load(projectRoot string) Config {
	cfg := Defaults()

	if home, err := os.UserHomeDir(); err == nil {
		mergeDir(&cfg, filepath.Join(home, ".config", "jflash"))
	}

	if projectRoot != "" {
		mergeDir(&cfg, Dir(projectRoot))
	}

	return cfg
}

// Save writes the config to the project .jflash/config.json by default,
// or to the global config if global is true.
func Save(cfg Config, projectRoot string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "jflash")
	} else {
		dir = Dir(projectRoot)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// TimeoutDuration parses Timeout. An empty value yields the default.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return jlink.DefaultTimeout, nil
	}
	if c.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}

// ProbeConfig converts the file settings into a jlink.Config.
func (c Config) ProbeConfig() (jlink.Config, error) {
	iface, err := jlink.ParseInterface(c.Interface)
	if err != nil {
		return jlink.Config{}, err
	}
	return jlink.Config{
		ConnectedMarker: c.ConnectedMarker,
		Device:          c.Device,
		Interface:       iface,
		SpeedKHz:        c.SpeedKHz,
		ExeName:         c.ExeName,
		ToolDir:         c.JLinkDir,
	}, nil
}

func mergeDir(cfg *Config, dir string) {
	if fileCfg, ok := readJSON(filepath.Join(dir, "config.json")); ok {
		merge(cfg, fileCfg)
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if fileCfg, ok := readYAML(filepath.Join(dir, name)); ok {
			merge(cfg, fileCfg)
			break
		}
	}
}

func readJSON(path string) (Config, bool) {
	var fileCfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, false
	}
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fileCfg, false
	}
	return fileCfg, true
}

func readYAML(path string) (Config, bool) {
	var fileCfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, false
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fileCfg, false
	}
	return fileCfg, true
}

func merge(cfg *Config, fileCfg Config) {
	if fileCfg.Device != "" {
		cfg.Device = fileCfg.Device
	}
	if fileCfg.Interface != "" {
		cfg.Interface = fileCfg.Interface
	}
	if fileCfg.SpeedKHz != 0 {
		cfg.SpeedKHz = fileCfg.SpeedKHz
	}
	if fileCfg.ConnectedMarker != "" {
		cfg.ConnectedMarker = fileCfg.ConnectedMarker
	}
	if fileCfg.ExeName != "" {
		cfg.ExeName = fileCfg.ExeName
	}
	if fileCfg.JLinkDir != "" {
		cfg.JLinkDir = fileCfg.JLinkDir
	}
	if fileCfg.Timeout != "" {
		cfg.Timeout = fileCfg.Timeout
	}
	if fileCfg.SerialPort != "" {
		cfg.SerialPort = fileCfg.SerialPort
	}
	if fileCfg.SerialBaudRate != 0 {
		cfg.SerialBaudRate = fileCfg.SerialBaudRate
	}
}
