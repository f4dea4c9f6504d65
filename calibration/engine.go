package calibration

// Engine decodes signals against a fixed host byte order. The zero value
// assumes a little-endian host; use NewEngine for the running machine.
// Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	Host Endianness
}

// NewEngine returns an engine for the host's native byte order.
func NewEngine() Engine {
	return Engine{Host: HostEndianness()}
}

// Calibrate extracts sig from frame and applies its gain and offset. It
// reports false when the signal does not fit in the frame's payload.
func (e Engine) Calibrate(sig Signal, frame RawFrame) (CalibratedDatum, bool) {
	if sig.dataLength > MaxBits {
		return CalibratedDatum{}, false
	}
	if sig.startBit+sig.dataLength > len(frame.Data)*8 {
		return CalibratedDatum{}, false
	}

	field := getBits(packPayload(frame.Data), sig.startBit, sig.dataLength, e.Host)
	native := sig.endianness == e.Host

	datum := CalibratedDatum{
		Timestamp: frame.Timestamp,
		Name:      sig.name,
		Unit:      sig.unit,
	}

	// Unsigned fields already in host order, and single bytes, need no
	// narrowing or swapping.
	if !sig.signed && (native || sig.dataLength <= 8) {
		datum.Raw = int64(field)
		datum.Value = float64(field)*sig.gain + sig.offset
		return datum, true
	}

	raw, value := narrow(field, sig.dataLength, sig.signed, !native)
	datum.Raw = raw
	datum.Value = value*sig.gain + sig.offset
	return datum, true
}

var hostEngine = NewEngine()

// CalibrateSignal decodes sig from frame using the host's byte order.
func CalibrateSignal(sig Signal, frame RawFrame) (CalibratedDatum, bool) {
	return hostEngine.Calibrate(sig, frame)
}
