package config

import (
	"encoding/json"
	"os"
)

// Source kinds accepted in Config.Source.
const (
	SourceScreen = "screen"
	SourceDir    = "dir"
	SourceVideo  = "video"
)

// Config holds runtime configuration for the probe and its frame source.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`
	// Classification thresholds
	BlackThreshold  float64 `json:"black_threshold"`
	ChangeThreshold float64 `json:"change_threshold"`

	// Frame source
	Source             string `json:"source"`
	SourcePath         string `json:"source_path"`
	PollIntervalMillis int    `json:"poll_interval_ms"`
	VideoFPS           int    `json:"video_fps"`
	VideoMaxWidth      int    `json:"video_max_width"`
	StopAfter          int    `json:"stop_after"`

	// Region of interest; zero width or height means the whole frame.
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`

	// Touch probe
	TouchX            int `json:"touch_x"`
	TouchY            int `json:"touch_y"`
	TouchSettleMillis int `json:"touch_settle_ms"`

	// Reporting
	ReportPath   string `json:"report_path"`
	EvidenceDir  string `json:"evidence_dir"`
	MQTTBroker   string `json:"mqtt_broker"` // empty disables MQTT
	MQTTTopic    string `json:"mqtt_topic"`
	MQTTClientID string `json:"mqtt_client_id"`

	// Ambient-light sensor board on a serial port; empty disables it.
	LuxPort          string  `json:"lux_port"`
	LuxBaud          int     `json:"lux_baud"`
	LuxDarkThreshold float64 `json:"lux_dark_threshold"`
	LuxMaxAgeMillis  int     `json:"lux_max_age_ms"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		BlackThreshold:     10.0,
		ChangeThreshold:    1.0,
		Source:             SourceScreen,
		PollIntervalMillis: 1000,
		VideoFPS:           1,
		VideoMaxWidth:      640,
		TouchSettleMillis:  500,
		MQTTTopic:          "screenprobe",
		MQTTClientID:       "screenprobe",
		LuxBaud:            115200,
		LuxDarkThreshold:   5.0,
		LuxMaxAgeMillis:    2000,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.BlackThreshold < 0 || c.BlackThreshold > 255 {
		c.BlackThreshold = 10.0
	}
	if c.ChangeThreshold < 0 || c.ChangeThreshold > 255 {
		c.ChangeThreshold = 1.0
	}
	switch c.Source {
	case SourceScreen, SourceDir, SourceVideo:
	default:
		c.Source = SourceScreen
	}
	if c.PollIntervalMillis < 0 {
		c.PollIntervalMillis = 1000
	}
	if c.VideoFPS <= 0 {
		c.VideoFPS = 1
	}
	if c.VideoMaxWidth <= 0 {
		c.VideoMaxWidth = 640
	}
	if c.StopAfter < 0 {
		c.StopAfter = 0
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	if c.TouchSettleMillis < 0 {
		c.TouchSettleMillis = 500
	}
	if c.MQTTTopic == "" {
		c.MQTTTopic = "screenprobe"
	}
	if c.MQTTClientID == "" {
		c.MQTTClientID = "screenprobe"
	}
	if c.LuxBaud <= 0 {
		c.LuxBaud = 115200
	}
	if c.LuxDarkThreshold < 0 {
		c.LuxDarkThreshold = 5.0
	}
	if c.LuxMaxAgeMillis < 0 {
		c.LuxMaxAgeMillis = 2000
	}
	return nil
}

// HasSelection reports whether a non-empty region of interest is configured.
func (c *Config) HasSelection() bool { return c.SelectionW > 0 && c.SelectionH > 0 }

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
