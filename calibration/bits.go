package calibration

import "math/bits"

// lowMask returns a value with the low n bits set. n is 0..64.
func lowMask(n int) uint64 {
	if n <= 0 {
		return 0
	}
	return ^uint64(0) >> uint(MaxBits-n)
}

// packPayload assembles up to the first eight payload bytes into one word,
// byte 0 being the least significant. Missing bytes read as zero.
func packPayload(data []byte) uint64 {
	var payload uint64
	for i := 0; i < len(data) && i < 8; i++ {
		payload |= uint64(data[i]) << (8 * i)
	}
	return payload
}

// getBits isolates an n-bit field at startBit. On a big-endian host the
// word is shifted the other way and the mask is byte-reversed to match the
// host's memory order.
func getBits(payload uint64, startBit, n int, host Endianness) uint64 {
	mask := lowMask(n)
	if host == BigEndian {
		return (payload << uint(startBit)) & bits.ReverseBytes64(mask)
	}
	return (payload >> uint(startBit)) & mask
}

// narrow truncates field to the smallest container holding n bits,
// byte-swaps it inside that container when swap is set, and reinterprets it
// as signed when requested. Sign extension happens from the container's top
// bit, not from bit n-1: a 12-bit signed field is read as an int16.
func narrow(field uint64, n int, signed, swap bool) (raw int64, value float64) {
	if signed {
		switch {
		case n <= 8:
			v := int8(field)
			return int64(v), float64(v)
		case n <= 16:
			u := uint16(field)
			if swap {
				u = bits.ReverseBytes16(u)
			}
			v := int16(u)
			return int64(v), float64(v)
		case n <= 32:
			u := uint32(field)
			if swap {
				u = bits.ReverseBytes32(u)
			}
			v := int32(u)
			return int64(v), float64(v)
		default:
			u := field
			if swap {
				u = bits.ReverseBytes64(u)
			}
			v := int64(u)
			return v, float64(v)
		}
	}

	switch {
	case n <= 16:
		u := uint16(field)
		if swap {
			u = bits.ReverseBytes16(u)
		}
		return int64(u), float64(u)
	case n <= 32:
		u := uint32(field)
		if swap {
			u = bits.ReverseBytes32(u)
		}
		return int64(u), float64(u)
	default:
		u := field
		if swap {
			u = bits.ReverseBytes64(u)
		}
		return int64(u), float64(u)
	}
}
