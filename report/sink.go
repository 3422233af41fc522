package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Sink consumes records.
type Sink interface {
	Emit(Record) error
	Close() error
}

// JSONLSink writes one JSON object per record.
type JSONLSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLSink writes records to w. Close does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{enc: json.NewEncoder(w)}
}

// OpenJSONLSink appends records to the file at path, creating it if needed.
func OpenJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	return &JSONLSink{enc: json.NewEncoder(f), closer: f}, nil
}

func (s *JSONLSink) Emit(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(r)
}

func (s *JSONLSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// LogSink logs faults at warn level and healthy frames at debug level. Each
// fingerprinted record also logs its hash distance from the previous one.
type LogSink struct {
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func NewLogSink(logger *slog.Logger) *LogSink { return &LogSink{logger: logger} }

func (s *LogSink) Emit(r Record) error {
	if s.logger == nil {
		return nil
	}
	attrs := []any{"seq", r.Sequence, "source", r.Source, "frame", r.Frame, "status", r.Status()}
	if d, ok := s.distance(r.Fingerprint); ok {
		attrs = append(attrs, "fingerprint_distance", d)
	}
	if r.Window != "" {
		attrs = append(attrs, "window", r.Window)
	}
	if r.Lux != nil {
		attrs = append(attrs, "lux", r.Lux.Lux, "lux_status", r.Lux.Status.String())
	}
	if r.Backlight != "" {
		attrs = append(attrs, "backlight", r.Backlight)
	}
	switch {
	case r.Kind == KindInvalid:
		s.logger.Error("probe.invalid_frame", append(attrs, "error", r.Error)...)
	case r.Fault():
		s.logger.Warn("probe."+r.Status(), append(attrs, "detail", detail(r))...)
	default:
		s.logger.Debug("probe."+r.Status(), append(attrs, "detail", detail(r))...)
	}
	return nil
}

func (s *LogSink) Close() error { return nil }

func (s *LogSink) distance(fp string) (int, bool) {
	if fp == "" {
		return 0, false
	}
	s.mu.Lock()
	prev := s.last
	s.last = fp
	s.mu.Unlock()
	if prev == "" {
		return 0, false
	}
	d, err := FingerprintDistance(prev, fp)
	if err != nil {
		return 0, false
	}
	return d, true
}

func detail(r Record) string {
	switch {
	case r.Touch != nil:
		return r.Touch.Detail
	case r.Black != nil && r.Black.Positive:
		return r.Black.Detail
	case r.Freeze != nil:
		return r.Freeze.Detail
	case r.Black != nil:
		return r.Black.Detail
	}
	return ""
}

// EvidenceSink saves the frame of every faulty record as a PNG file.
type EvidenceSink struct{ dir string }

// NewEvidenceSink creates dir if needed.
func NewEvidenceSink(dir string) (*EvidenceSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("evidence dir: %w", err)
	}
	return &EvidenceSink{dir: dir}, nil
}

// Path returns the file an evidence frame for r is written to.
func (s *EvidenceSink) Path(r Record) string {
	return filepath.Join(s.dir, fmt.Sprintf("%06d-%s.png", r.Sequence, r.Status()))
}

func (s *EvidenceSink) Emit(r Record) error {
	if r.Image == nil || !r.Fault() {
		return nil
	}
	return imaging.Save(r.Image, s.Path(r))
}

func (s *EvidenceSink) Close() error { return nil }

// Multi fans records out to every sink, collecting their errors.
type Multi []Sink

func (m Multi) Emit(r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
