package lux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the UART rate of the sensor board.
const DefaultBaud = 115200

const portReadTimeout = 500 * time.Millisecond

// OpenSerial opens the sensor board's serial port. Reads time out so a Meter
// reading from it notices cancellation.
func OpenSerial(name string, baud int) (io.ReadCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: portReadTimeout})
	if err != nil {
		return nil, fmt.Errorf("open lux port %s: %w", name, err)
	}
	return p, nil
}

// Meter keeps the latest reading of a board output stream. Latest may be
// called concurrently with Run.
type Meter struct {
	r      io.Reader
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	last   Reading
	have   bool
	failed bool
}

func NewMeter(r io.Reader, logger *slog.Logger) *Meter {
	return &Meter{r: r, logger: logger, now: time.Now}
}

// Run consumes lines until the stream ends or ctx is cancelled. Both end
// the run without error.
func (m *Meter) Run(ctx context.Context) error {
	sc := bufio.NewScanner(ctxReader{ctx: ctx, r: m.r})
	for sc.Scan() {
		rd, err := ParseLine(sc.Text())
		switch {
		case errors.Is(err, ErrNoReading):
			continue
		case errors.Is(err, ErrSensorInit):
			m.mu.Lock()
			m.failed = true
			m.mu.Unlock()
			if m.logger != nil {
				m.logger.Error("lux.sensor_init_failed")
			}
			continue
		case err != nil:
			if m.logger != nil {
				m.logger.Warn("lux.bad_line", "line", sc.Text(), "error", err)
			}
			continue
		}
		rd.At = m.now()
		m.mu.Lock()
		m.last, m.have = rd, true
		m.mu.Unlock()
		if !rd.Valid() && m.logger != nil {
			m.logger.Debug("lux.status", "status", rd.Status.String(), "lux", rd.Lux)
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read lux stream: %w", err)
	}
	return nil
}

// Latest returns the most recent reading if it is younger than maxAge.
// maxAge <= 0 accepts any age.
func (m *Meter) Latest(maxAge time.Duration) (Reading, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.have {
		return Reading{}, false
	}
	if maxAge > 0 && m.now().Sub(m.last.At) > maxAge {
		return Reading{}, false
	}
	return m.last, true
}

// SensorFailed reports whether the board announced a failed sensor init.
func (m *Meter) SensorFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// ctxReader retries the empty reads a timed-out serial port returns until
// data arrives or ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	for {
		if err := c.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := c.r.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}
