package calibration

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Sink receives every successfully calibrated frame. It is called
// synchronously from Registry.Calibrate, on whichever goroutine made that
// call; implementations that need asynchronous delivery should hand the
// result off themselves.
type Sink interface {
	ProcessCalibratedData(r *Registry, data CalibratedFrame)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r *Registry, data CalibratedFrame)

func (f SinkFunc) ProcessCalibratedData(r *Registry, data CalibratedFrame) { f(r, data) }

// Option configures a Registry.
type Option func(*Registry)

// WithEngine overrides the host byte order used for decoding.
func WithEngine(e Engine) Option {
	return func(r *Registry) { r.engine = e }
}

// WithFrames registers initial frame definitions. Later definitions for the
// same ID replace earlier ones.
func WithFrames(defs ...FrameDefinition) Option {
	return func(r *Registry) {
		for _, d := range defs {
			r.frames[d.ID] = NewFrameDefinition(d.ID, d.Signals)
		}
	}
}

// Registry maps frame IDs to frame definitions and dispatches incoming
// frames to them. It is safe for concurrent use: AddFrame and RemoveFrame
// may run while other goroutines call Calibrate.
type Registry struct {
	engine Engine
	sink   Sink

	mu     sync.RWMutex
	frames map[uint32]FrameDefinition
}

// NewRegistry returns an empty registry. sink may be nil.
func NewRegistry(sink Sink, opts ...Option) *Registry {
	r := &Registry{
		engine: NewEngine(),
		sink:   sink,
		frames: make(map[uint32]FrameDefinition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddFrame inserts the definition for id, replacing any existing one.
func (r *Registry) AddFrame(id uint32, signals []Signal) {
	r.AddDefinition(NewFrameDefinition(id, signals))
}

// AddDefinition inserts def, replacing any definition with the same ID.
func (r *Registry) AddDefinition(def FrameDefinition) {
	def = NewFrameDefinition(def.ID, def.Signals)
	r.mu.Lock()
	r.frames[def.ID] = def
	r.mu.Unlock()
}

// RemoveFrame deletes the definition for id. Removing an absent ID is a no-op.
func (r *Registry) RemoveFrame(id uint32) {
	r.mu.Lock()
	delete(r.frames, id)
	r.mu.Unlock()
}

// Frame returns a copy of the definition registered for id.
func (r *Registry) Frame(id uint32) (FrameDefinition, bool) {
	def, ok := r.lookup(id)
	if !ok {
		return FrameDefinition{}, false
	}
	return NewFrameDefinition(def.ID, def.Signals), true
}

// lookup returns the stored definition. Stored signal slices are never
// written after insertion, so they may be read without the lock.
func (r *Registry) lookup(id uint32) (FrameDefinition, bool) {
	r.mu.RLock()
	def, ok := r.frames[id]
	r.mu.RUnlock()
	return def, ok
}

// FrameIDs returns the registered IDs in ascending order.
func (r *Registry) FrameIDs() []uint32 {
	r.mu.RLock()
	ids := maps.Keys(r.frames)
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Calibrate decodes every signal defined for frame.ID. Signals that do not
// fit in the payload are left out of the result; if none fit the call fails
// with ErrNoDataToCalibrate. On success the sink, if any, is notified
// before Calibrate returns.
func (r *Registry) Calibrate(frame RawFrame) (CalibratedFrame, error) {
	def, ok := r.lookup(frame.ID)
	if !ok {
		return CalibratedFrame{}, fmt.Errorf("frame 0x%X: %w", frame.ID, ErrFrameIDNotFound)
	}

	signals := make(map[string]CalibratedDatum, len(def.Signals))
	for _, sig := range def.Signals {
		datum, ok := r.engine.Calibrate(sig, frame)
		if !ok {
			continue
		}
		signals[datum.Name] = datum
	}
	if len(signals) == 0 {
		return CalibratedFrame{}, fmt.Errorf("frame 0x%X (%d bytes): %w", frame.ID, len(frame.Data), ErrNoDataToCalibrate)
	}

	out := CalibratedFrame{Timestamp: frame.Timestamp, Signals: signals}
	if r.sink != nil {
		r.sink.ProcessCalibratedData(r, out)
	}
	return out, nil
}
