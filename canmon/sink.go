package main

import (
	"fmt"
	"io"
	"math"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cancalib/calibration"
	"cancalib/utils"
)

// MultiSink fans a calibrated frame out to several sinks, in order.
type MultiSink []calibration.Sink

func (m MultiSink) ProcessCalibratedData(r *calibration.Registry, data calibration.CalibratedFrame) {
	for _, s := range m {
		s.ProcessCalibratedData(r, data)
	}
}

// LogSink writes calibrated frames to the logger: a summary line at DEBUG
// and one line per signal at TRACE.
type LogSink struct {
	log *utils.Logger
}

func (s LogSink) ProcessCalibratedData(_ *calibration.Registry, data calibration.CalibratedFrame) {
	if !s.log.Enabled(utils.DEBUG) {
		return
	}
	names := maps.Keys(data.Signals)
	slices.Sort(names)
	s.log.Debug("CAL t=%.6f signals=%v", data.Timestamp, names)
	if !s.log.Enabled(utils.TRACE) {
		return
	}
	for _, name := range names {
		d := data.Signals[name]
		s.log.Trace("  %s = %g %s (raw=%d)", name, d.Value, d.Unit, d.Raw)
	}
}

const defaultStatsWindow = 10000

type series struct {
	unit   string
	count  uint64
	values []float64 // most recent samples, oldest first
}

// StatsSink keeps the most recent samples of every signal it sees and
// summarises them on demand.
type StatsSink struct {
	window int

	mu     sync.Mutex
	series map[string]*series
}

func NewStatsSink(window int) *StatsSink {
	if window <= 0 {
		window = defaultStatsWindow
	}
	return &StatsSink{window: window, series: map[string]*series{}}
}

func (s *StatsSink) ProcessCalibratedData(_ *calibration.Registry, data calibration.CalibratedFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, d := range data.Signals {
		ser, ok := s.series[name]
		if !ok {
			ser = &series{unit: d.Unit}
			s.series[name] = ser
		}
		ser.count++
		if len(ser.values) == s.window {
			copy(ser.values, ser.values[1:])
			ser.values = ser.values[:s.window-1]
		}
		ser.values = append(ser.values, d.Value)
	}
}

// SignalStats summarises one signal over the retained window.
type SignalStats struct {
	Name   string
	Unit   string
	Count  uint64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary returns one entry per signal, sorted by name.
func (s *StatsSink) Summary() []SignalStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := maps.Keys(s.series)
	slices.Sort(names)
	out := make([]SignalStats, 0, len(names))
	for _, name := range names {
		ser := s.series[name]
		st := SignalStats{Name: name, Unit: ser.unit, Count: ser.count}
		if len(ser.values) > 0 {
			st.Min = floats.Min(ser.values)
			st.Max = floats.Max(ser.values)
			st.Mean, st.StdDev = stat.MeanStdDev(ser.values, nil)
			if len(ser.values) < 2 || math.IsNaN(st.StdDev) {
				st.StdDev = 0
			}
		}
		out = append(out, st)
	}
	return out
}

func (s *StatsSink) WriteSummary(w io.Writer) error {
	for _, st := range s.Summary() {
		_, err := fmt.Fprintf(w, "%-24s n=%-8d mean=%-12.4g std=%-12.4g min=%-12.4g max=%-12.4g %s\n",
			st.Name, st.Count, st.Mean, st.StdDev, st.Min, st.Max, st.Unit)
		if err != nil {
			return err
		}
	}
	return nil
}
