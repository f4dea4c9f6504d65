package calibration

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Endianness is the byte order a signal's bits are laid out in within a
// frame payload. The same type describes the host's native order.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("Endianness(%d)", int(e))
	}
}

// ParseEndianness accepts the spellings used by signal maps and DBC tooling.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "little_endian", "littleendian", "le", "intel":
		return LittleEndian, nil
	case "big", "big_endian", "bigendian", "be", "motorola":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown endianness %q", s)
	}
}

var hostEndianness = detectHostEndianness()

func detectHostEndianness() Endianness {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return LittleEndian
	}
	return BigEndian
}

// HostEndianness returns the byte order of the machine running the decode.
// It is computed once per process.
func HostEndianness() Endianness {
	return hostEndianness
}
