// Package lux reads the ambient-light stream of the OPT3001 sensor board that
// sits against the panel of the device-under-test. The board prints one line
// per sample over its UART; a lit backlight keeps the reading high even when
// the mirrored frame is black.
package lux

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Status is the health the sensor board attaches to each sample.
type Status uint8

const (
	StatusNormal Status = iota
	StatusCommErr
	StatusRangeErr
	StatusJumpErr
)

var statusNames = [...]string{
	StatusNormal:   "normal",
	StatusCommErr:  "comm_err",
	StatusRangeErr: "range_err",
	StatusJumpErr:  "jump_err",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Board status words, in the firmware's wording and in the enum's own names.
var statusWords = map[string]Status{
	"正常":        StatusNormal,
	"通信异常":      StatusCommErr,
	"量程异常":      StatusRangeErr,
	"跳变异常":      StatusJumpErr,
	"NORMAL":    StatusNormal,
	"COMM_ERR":  StatusCommErr,
	"RANGE_ERR": StatusRangeErr,
	"JUMP_ERR":  StatusJumpErr,
}

var (
	// ErrNoReading marks a line that carries no sample, such as a banner.
	ErrNoReading = errors.New("line carries no lux reading")
	// ErrSensorInit is the board reporting that the sensor did not come up.
	ErrSensorInit = errors.New("lux sensor failed to initialize")
)

// Reading is one sample. On a non-normal status the board repeats the last
// valid value in Lux.
type Reading struct {
	Lux    float64   `json:"lux"`
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Valid reports whether the sample was measured, not carried over.
func (r Reading) Valid() bool { return r.Status == StatusNormal }

// "当前光照强度：123.45 lux（正常）" with either full-width or ASCII punctuation.
var lineRe = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s*lux\s*[（(]\s*([^）)]+?)\s*[）)]`)

// ParseLine decodes one line of board output. Lines without a sample return
// ErrNoReading, the init failure banner returns ErrSensorInit.
func ParseLine(line string) (Reading, error) {
	line = strings.TrimSpace(line)
	if strings.Contains(line, "初始化失败") {
		return Reading{}, ErrSensorInit
	}
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Reading{}, ErrNoReading
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Reading{}, fmt.Errorf("lux value %q: %w", m[1], err)
	}
	st, ok := statusWords[m[2]]
	if !ok {
		return Reading{}, fmt.Errorf("unknown lux status %q", m[2])
	}
	return Reading{Lux: v, Status: st}, nil
}

// Backlight states derived from a reading taken while the frame was black.
const (
	BacklightOn      = "on"
	BacklightOff     = "off"
	BacklightUnknown = "unknown"
)

// Backlight classifies the panel from r: on when the measured light is at or
// above darkLux, off below it, unknown when the sample was not measured.
func Backlight(r Reading, darkLux float64) string {
	if !r.Valid() {
		return BacklightUnknown
	}
	if r.Lux < darkLux {
		return BacklightOff
	}
	return BacklightOn
}
