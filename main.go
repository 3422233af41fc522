package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/screenprobe/app"
	"github.com/soocke/screenprobe/config"
	"github.com/soocke/screenprobe/debug"
	"github.com/soocke/screenprobe/domain/screen"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "screenprobe.json", "path to JSON config")
	source := flag.String("source", "", "frame source: screen, dir or video")
	path := flag.String("path", "", "frame directory or video file")
	black := flag.Float64("black", -1, "black-screen luminance threshold")
	change := flag.Float64("change", -1, "freeze/touch change-score threshold")
	interval := flag.Int("interval", -1, "milliseconds between frames")
	stopAfter := flag.Int("n", -1, "stop after this many frames (0 = unbounded)")
	reportPath := flag.String("report", "", "JSON lines report file, - for stdout")
	evidence := flag.String("evidence", "", "directory for PNGs of faulty frames")
	touch := flag.Bool("touch", false, "tap at touch_x/touch_y and verify the screen reacted")
	touchBefore := flag.String("touch-before", "", "offline touch check: capture before the touch")
	touchAfter := flag.String("touch-after", "", "offline touch check: capture after the touch")
	luxPort := flag.String("lux-port", "", "serial port of the ambient-light sensor board")
	mqttBroker := flag.String("mqtt", "", "MQTT broker (host:port) to publish records to")
	debugFlag := flag.Bool("debug", false, "verbose logging and runtime stats")
	flag.Parse()

	// Base config from file, then flags
	cfg, err := config.Load(*cfgPath)
	bootLogger := NewLogger(slog.LevelInfo)
	if err != nil {
		bootLogger.Error("config load", "path", *cfgPath, "error", err)
		return 2
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "path":
			cfg.SourcePath = *path
		case "black":
			cfg.BlackThreshold = *black
		case "change":
			cfg.ChangeThreshold = *change
		case "interval":
			cfg.PollIntervalMillis = *interval
		case "n":
			cfg.StopAfter = *stopAfter
		case "report":
			cfg.ReportPath = *reportPath
		case "evidence":
			cfg.EvidenceDir = *evidence
		case "lux-port":
			cfg.LuxPort = *luxPort
		case "mqtt":
			cfg.MQTTBroker = *mqttBroker
		case "debug":
			cfg.Debug = *debugFlag
		}
	})
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if cfg.Debug {
		debug.StartRuntimeLogger(ctx, 10*time.Second, logger)
	}

	probe, err := app.BuildProbe(cfg, logger)
	if err != nil {
		logger.Error("build probe", "error", err)
		return 2
	}
	defer func() {
		if err := probe.Close(); err != nil {
			logger.Error("close probe", "error", err)
		}
	}()

	logger.Info("screenprobe starting",
		"source", cfg.Source,
		"path", cfg.SourcePath,
		"black_threshold", cfg.BlackThreshold,
		"change_threshold", cfg.ChangeThreshold,
		"lux_port", cfg.LuxPort,
		"mqtt_broker", cfg.MQTTBroker,
	)

	switch {
	case *touchBefore != "" || *touchAfter != "":
		if *touchBefore == "" || *touchAfter == "" {
			fmt.Fprintln(os.Stderr, "-touch-before and -touch-after must be given together")
			return 2
		}
		res, err := probe.VerifyTouchFiles(*touchBefore, *touchAfter)
		return touchExit(logger, res, err)
	case *touch:
		res, err := probe.VerifyTouch(ctx)
		return touchExit(logger, res, err)
	}

	if err := probe.Run(ctx); err != nil {
		logger.Error("probe run", "error", err)
		return 1
	}
	logger.Info("screenprobe stopped")
	return 0
}

// touchExit maps a touch verification to the process exit code: 0 when the
// screen reacted, 1 when it did not or the check could not run.
func touchExit(logger *slog.Logger, res screen.Result, err error) int {
	if err != nil {
		logger.Error("touch verification", "error", err)
		return 1
	}
	fmt.Println(res.Detail)
	if !res.Positive {
		return 1
	}
	return 0
}
