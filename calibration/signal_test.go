package calibration

import (
	"errors"
	"testing"
)

func TestNewSignalLayout(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		start   int
		wantErr bool
	}{
		{"full word", 64, 0, false},
		{"last bit", 1, 63, false},
		{"zero length", 0, 0, false},
		{"zero length at end", 0, 64, false},
		{"too wide", 65, 0, true},
		{"spans past 64", 16, 56, true},
		{"start past end", 1, 64, true},
		{"negative length", -1, 0, true},
		{"negative start", 8, -8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig, err := NewSignal("speed", "km/h", tc.length, tc.start, BigEndian, false, 0.01, -100)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewSignal() = %+v, want error", sig)
				}
				if !errors.Is(err, ErrInvalidLayout) {
					t.Fatalf("error %v does not match ErrInvalidLayout", err)
				}
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) || cfgErr.Signal != "speed" {
					t.Fatalf("error %v is not a ConfigurationError for speed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSignal() error = %v", err)
			}
		})
	}
}

func TestSignalAccessors(t *testing.T) {
	sig := MustSignal("Speed", "km/h", 16, 32, BigEndian, true, 0.01, -100)
	if sig.Name() != "Speed" || sig.Unit() != "km/h" {
		t.Fatalf("name/unit = %q/%q", sig.Name(), sig.Unit())
	}
	if sig.DataLength() != 16 || sig.StartBit() != 32 {
		t.Fatalf("layout = %d@%d", sig.DataLength(), sig.StartBit())
	}
	if sig.Endianness() != BigEndian || !sig.IsSigned() {
		t.Fatalf("endianness/signed = %v/%v", sig.Endianness(), sig.IsSigned())
	}
	if sig.Gain() != 0.01 || sig.Offset() != -100 {
		t.Fatalf("gain/offset = %v/%v", sig.Gain(), sig.Offset())
	}
}

func TestMustSignalPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustSignal should panic for 72-bit field")
		}
	}()
	_ = MustSignal("bad", "", 72, 0, LittleEndian, false, 1, 0)
}

func TestParseEndianness(t *testing.T) {
	for in, want := range map[string]Endianness{
		"little":     LittleEndian,
		" Intel ":    LittleEndian,
		"LE":         LittleEndian,
		"big":        BigEndian,
		"Motorola":   BigEndian,
		"big_endian": BigEndian,
	} {
		got, err := ParseEndianness(in)
		if err != nil || got != want {
			t.Fatalf("ParseEndianness(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseEndianness("middle"); err == nil {
		t.Fatalf("ParseEndianness(middle) should fail")
	}
	if LittleEndian.String() != "little" || BigEndian.String() != "big" {
		t.Fatalf("String() = %s/%s", LittleEndian, BigEndian)
	}
}

func TestHostEndiannessIsStable(t *testing.T) {
	if HostEndianness() != detectHostEndianness() {
		t.Fatalf("cached host order differs from detected order")
	}
	if NewEngine().Host != HostEndianness() {
		t.Fatalf("NewEngine() does not use host order")
	}
}

func TestLowMask(t *testing.T) {
	for n, want := range map[int]uint64{0: 0, 1: 1, 8: 0xFF, 12: 0xFFF, 63: 1<<63 - 1, 64: ^uint64(0)} {
		if got := lowMask(n); got != want {
			t.Fatalf("lowMask(%d) = %#x, want %#x", n, got, want)
		}
	}
}
