package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"

	"cancalib/calibration"
	"cancalib/utils"
)

type RunnerConfig struct {
	Interface   string
	MapPath     string
	StatsPath   string // "-" for Stdout, empty to skip
	StatsWindow int
	Stdout      io.Writer // defaults to os.Stdout
}

// Counters tracks what happened to received frames.
type Counters struct {
	Received   atomic.Uint64
	Calibrated atomic.Uint64
	Unknown    atomic.Uint64
	Undersized atomic.Uint64
}

type Runner struct {
	cfg    RunnerConfig
	log    *utils.Logger
	reg    *calibration.Registry
	source *utils.FrameSource
	stats  *StatsSink
	counts Counters
}

func NewRunner(ctx context.Context, cfg RunnerConfig, log *utils.Logger) (*Runner, error) {
	cmap, err := utils.LoadSignalMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("load signal map: %w", err)
	}

	reader, err := utils.NewSocketCANReader(ctx, cfg.Interface)
	if err != nil {
		return nil, err
	}

	r, err := newRunner(cfg, log, cmap, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}
	return r, nil
}

func newRunner(cfg RunnerConfig, log *utils.Logger, cmap *utils.CANMap, reader utils.CANReader) (*Runner, error) {
	stats := NewStatsSink(cfg.StatsWindow)
	reg := calibration.NewRegistry(MultiSink{LogSink{log: log}, stats})
	if err := cmap.Apply(reg); err != nil {
		return nil, fmt.Errorf("signal map: %w", err)
	}

	return &Runner{
		cfg:    cfg,
		log:    log,
		reg:    reg,
		source: utils.NewFrameSource(cfg.Interface, reader, log),
		stats:  stats,
	}, nil
}

func (r *Runner) Close() {
	if r.source != nil {
		_ = r.source.Close()
	}
}

// Registry exposes the runner's registry so frames can be added or removed
// while Run is active.
func (r *Runner) Registry() *calibration.Registry { return r.reg }

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting RX: iface=%s map=%s frames=%d host=%s",
		r.cfg.Interface, r.cfg.MapPath, r.reg.Len(), calibration.HostEndianness())
	defer r.finish()

	for {
		frame, err := r.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Warn("Context canceled; stopping RX")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				r.log.Info("Frame source closed")
				return nil
			}
			r.log.Error("RX error: %v", err)
			return fmt.Errorf("receive: %w", err)
		}
		r.handle(frame)
	}
}

func (r *Runner) handle(frame calibration.RawFrame) {
	r.counts.Received.Add(1)

	_, err := r.reg.Calibrate(frame)
	switch {
	case err == nil:
		r.counts.Calibrated.Add(1)
	case errors.Is(err, calibration.ErrFrameIDNotFound):
		r.counts.Unknown.Add(1)
		r.log.Trace("skip: %v", err)
	case errors.Is(err, calibration.ErrNoDataToCalibrate):
		r.counts.Undersized.Add(1)
		r.log.Warn("%v", err)
	default:
		r.log.Error("calibrate 0x%X: %v", frame.ID, err)
	}
}

func (r *Runner) finish() {
	r.log.Info("Completed RX. received=%d calibrated=%d unknown=%d undersized=%d",
		r.counts.Received.Load(), r.counts.Calibrated.Load(), r.counts.Unknown.Load(), r.counts.Undersized.Load())

	switch r.cfg.StatsPath {
	case "":
		return
	case "-":
		w := r.cfg.Stdout
		if w == nil {
			w = os.Stdout
		}
		if err := r.stats.WriteSummary(w); err != nil {
			r.log.Error("write stats: %v", err)
		}
	default:
		f, err := os.Create(r.cfg.StatsPath)
		if err != nil {
			r.log.Error("write stats: %v", err)
			return
		}
		defer f.Close()
		if err := r.stats.WriteSummary(f); err != nil {
			r.log.Error("write stats: %v", err)
		}
	}
}
