package calibration

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameIDNotFound is returned by Registry.Calibrate when no definition
	// is registered for the frame's ID.
	ErrFrameIDNotFound = errors.New("calibration: frame id not found")
	// ErrNoDataToCalibrate is returned when a definition exists but none of
	// its signals fit in the frame's payload.
	ErrNoDataToCalibrate = errors.New("calibration: no data to calibrate")
	// ErrInvalidLayout is matched by every *ConfigurationError.
	ErrInvalidLayout = errors.New("calibration: invalid signal layout")
)

// ConfigurationError reports a signal whose bit layout cannot be decoded.
type ConfigurationError struct {
	Signal     string
	StartBit   int
	DataLength int
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("calibration: signal %q (start_bit=%d, bit_length=%d): %s",
		e.Signal, e.StartBit, e.DataLength, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidLayout
}
