package calibration

// RawFrame is one frame as delivered by the transport. Data may be shorter
// than eight bytes; extended payloads may be longer.
type RawFrame struct {
	Interface string
	Timestamp float64 // seconds
	ID        uint32
	Data      []byte
}

// CalibratedDatum is one signal's decoded value.
type CalibratedDatum struct {
	Timestamp float64
	Name      string
	Unit      string
	Value     float64
	// Raw is the narrowed field before scaling, sign-extended when the
	// signal is signed.
	Raw int64
}

// CalibratedFrame holds every signal decoded from one frame, keyed by name.
type CalibratedFrame struct {
	Timestamp float64
	Signals   map[string]CalibratedDatum
}

// FrameDefinition associates a frame ID with the signals it carries.
type FrameDefinition struct {
	ID      uint32
	Signals []Signal
}

// NewFrameDefinition copies signals so the caller's slice can be reused.
func NewFrameDefinition(id uint32, signals []Signal) FrameDefinition {
	cp := make([]Signal, len(signals))
	copy(cp, signals)
	return FrameDefinition{ID: id, Signals: cp}
}
