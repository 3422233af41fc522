package app

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/screenprobe/config"
	"github.com/soocke/screenprobe/domain/action"
	"github.com/soocke/screenprobe/domain/capture"
	"github.com/soocke/screenprobe/domain/lux"
	"github.com/soocke/screenprobe/domain/screen"
	"github.com/soocke/screenprobe/report"
)

// BuildProbe assembles source, monitor and sinks from cfg. The caller owns the
// returned probe and must Close it.
func BuildProbe(cfg *config.Config, logger *slog.Logger) (*Probe, error) {
	_ = cfg.Validate()
	var sel image.Rectangle
	if cfg.HasSelection() {
		sel = capture.Selection(cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH)
	}

	var src capture.Source
	name := cfg.Source
	switch cfg.Source {
	case config.SourceDir:
		d, err := capture.NewDirSource(cfg.SourcePath, sel)
		if err != nil {
			return nil, err
		}
		src = d
		name = cfg.SourcePath
	case config.SourceVideo:
		if cfg.SourcePath == "" {
			return nil, fmt.Errorf("video source needs a path")
		}
		src = capture.NewVideoSource(cfg.SourcePath, cfg.VideoFPS, cfg.VideoMaxWidth, sel, logger)
		name = cfg.SourcePath
	default:
		src = capture.NewScreenSource(sel)
	}

	sinks := report.Multi{report.NewLogSink(logger)}
	switch cfg.ReportPath {
	case "":
	case "-":
		sinks = append(sinks, report.NewJSONLSink(os.Stdout))
	default:
		s, err := report.OpenJSONLSink(cfg.ReportPath)
		if err != nil {
			_ = src.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.EvidenceDir != "" {
		s, err := report.NewEvidenceSink(cfg.EvidenceDir)
		if err != nil {
			_ = sinks.Close()
			_ = src.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.MQTTBroker != "" {
		s, err := report.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, logger)
		if err != nil {
			_ = sinks.Close()
			_ = src.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}

	var meter *lux.Meter
	var closers []io.Closer
	if cfg.LuxPort != "" {
		port, err := lux.OpenSerial(cfg.LuxPort, cfg.LuxBaud)
		if err != nil {
			_ = sinks.Close()
			_ = src.Close()
			return nil, err
		}
		meter = lux.NewMeter(port, logger)
		closers = append(closers, port)
	}

	mon := screen.NewMonitor(screen.Thresholds{
		Black:  cfg.BlackThreshold,
		Change: cfg.ChangeThreshold,
	}, logger)

	return &Probe{
		Source:      src,
		SourceName:  name,
		Monitor:     mon,
		Sink:        sinks,
		Logger:      logger,
		Interval:    time.Duration(cfg.PollIntervalMillis) * time.Millisecond,
		StopAfter:   cfg.StopAfter,
		Tap:         action.Tap,
		TouchX:      cfg.TouchX,
		TouchY:      cfg.TouchY,
		TouchSettle: time.Duration(cfg.TouchSettleMillis) * time.Millisecond,
		Selection:   sel,
		Window:      action.ForegroundWindowTitle,
		Lux:         meter,
		LuxMaxAge:   time.Duration(cfg.LuxMaxAgeMillis) * time.Millisecond,
		DarkLux:     cfg.LuxDarkThreshold,
		closers:     closers,
	}, nil
}

// Close releases the source and the lux port and flushes the sinks.
func (p *Probe) Close() error {
	var errs []error
	if p.Source != nil {
		errs = append(errs, p.Source.Close())
	}
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	if p.Sink != nil {
		errs = append(errs, p.Sink.Close())
	}
	return errors.Join(errs...)
}
