package calibration

// MaxBits is the widest payload span a signal may occupy.
const MaxBits = 64

// Signal describes one fixed-position bit field inside a frame payload and
// the linear transform that turns its raw value into engineering units.
// Signals are values; once built they never change.
type Signal struct {
	name       string
	unit       string
	dataLength int
	startBit   int
	endianness Endianness
	signed     bool
	gain       float64
	offset     float64
}

// NewSignal validates the layout and returns the signal. The calibrated
// value is raw*gain + offset.
func NewSignal(name, unit string, dataLength, startBit int, endianness Endianness, isSigned bool, gain, offset float64) (Signal, error) {
	cfgErr := func(reason string) error {
		return &ConfigurationError{Signal: name, StartBit: startBit, DataLength: dataLength, Reason: reason}
	}
	switch {
	case dataLength < 0:
		return Signal{}, cfgErr("negative data length")
	case startBit < 0:
		return Signal{}, cfgErr("negative start bit")
	case dataLength > MaxBits:
		return Signal{}, cfgErr("data fields larger than 64 bits are not supported")
	case startBit+dataLength > MaxBits:
		return Signal{}, cfgErr("start bit + data length spans past 64 bits")
	}
	return Signal{
		name:       name,
		unit:       unit,
		dataLength: dataLength,
		startBit:   startBit,
		endianness: endianness,
		signed:     isSigned,
		gain:       gain,
		offset:     offset,
	}, nil
}

// MustSignal is like NewSignal but panics on an invalid layout. Intended
// for static signal tables.
func MustSignal(name, unit string, dataLength, startBit int, endianness Endianness, isSigned bool, gain, offset float64) Signal {
	s, err := NewSignal(name, unit, dataLength, startBit, endianness, isSigned, gain, offset)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Signal) Name() string           { return s.name }
func (s Signal) Unit() string           { return s.unit }
func (s Signal) DataLength() int        { return s.dataLength }
func (s Signal) StartBit() int          { return s.startBit }
func (s Signal) Endianness() Endianness { return s.endianness }
func (s Signal) IsSigned() bool         { return s.signed }
func (s Signal) Gain() float64          { return s.gain }
func (s Signal) Offset() float64        { return s.offset }
