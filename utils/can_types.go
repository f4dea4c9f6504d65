package utils

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"cancalib/calibration"
)

// SignalDef is one signal row of a signal map, before validation.
type SignalDef struct {
	Name       string  `yaml:"name"`
	StartBit   int     `yaml:"start_bit"`
	BitLength  int     `yaml:"bit_length"`
	Endianness string  `yaml:"endianness"` // little|big; empty means little
	Signed     bool    `yaml:"signed"`
	Factor     float64 `yaml:"factor"`
	Offset     float64 `yaml:"offset"`
	Unit       string  `yaml:"unit"`
	Comment    string  `yaml:"comment"`
}

type FrameDef struct {
	ID      uint32      `yaml:"-"`
	Name    string      `yaml:"name"`
	DLC     int         `yaml:"dlc"`
	Signals []SignalDef `yaml:"signals"`
}

// CANMap is a loaded signal map, indexed by frame ID and name.
type CANMap struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

func newCANMap() *CANMap {
	return &CANMap{
		ByID:   map[uint32]*FrameDef{},
		ByName: map[string]*FrameDef{},
	}
}

func (m *CANMap) add(fd *FrameDef) error {
	if _, ok := m.ByID[fd.ID]; ok {
		return fmt.Errorf("frame 0x%X defined twice", fd.ID)
	}
	if fd.Name != "" {
		if other, ok := m.ByName[fd.Name]; ok {
			return fmt.Errorf("frame name %q used by 0x%X and 0x%X", fd.Name, other.ID, fd.ID)
		}
		m.ByName[fd.Name] = fd
	}
	m.ByID[fd.ID] = fd
	return nil
}

func (m *CANMap) FrameNames() []string {
	out := maps.Keys(m.ByName)
	slices.Sort(out)
	return out
}

// FrameIDs returns the mapped frame IDs in ascending order.
func (m *CANMap) FrameIDs() []uint32 {
	out := maps.Keys(m.ByID)
	slices.Sort(out)
	return out
}

func (m *CANMap) FrameByName(name string) (*FrameDef, error) {
	fd, ok := m.ByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown frame %q (available: %v)", name, m.FrameNames())
	}
	return fd, nil
}

func (m *CANMap) FrameByID(id uint32) (*FrameDef, error) {
	fd, ok := m.ByID[id]
	if !ok {
		return nil, fmt.Errorf("unknown frame id 0x%X", id)
	}
	return fd, nil
}

// Signal validates the row and builds the calibration signal.
func (s SignalDef) Signal() (calibration.Signal, error) {
	order := calibration.LittleEndian
	if s.Endianness != "" {
		var err error
		if order, err = calibration.ParseEndianness(s.Endianness); err != nil {
			return calibration.Signal{}, fmt.Errorf("signal %s: %w", s.Name, err)
		}
	}
	return calibration.NewSignal(s.Name, s.Unit, s.BitLength, s.StartBit, order, s.Signed, s.Factor, s.Offset)
}

// Definition builds the frame definition, failing on the first invalid
// signal.
func (fd *FrameDef) Definition() (calibration.FrameDefinition, error) {
	signals := make([]calibration.Signal, 0, len(fd.Signals))
	for _, sd := range fd.Signals {
		sig, err := sd.Signal()
		if err != nil {
			return calibration.FrameDefinition{}, fmt.Errorf("frame %s (0x%X): %w", fd.Name, fd.ID, err)
		}
		signals = append(signals, sig)
	}
	return calibration.NewFrameDefinition(fd.ID, signals), nil
}

// Definitions converts every frame, in ascending ID order.
func (m *CANMap) Definitions() ([]calibration.FrameDefinition, error) {
	ids := m.FrameIDs()
	defs := make([]calibration.FrameDefinition, 0, len(ids))
	for _, id := range ids {
		def, err := m.ByID[id].Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Apply registers every frame of the map with reg. Nothing is registered
// if any signal is invalid.
func (m *CANMap) Apply(reg *calibration.Registry) error {
	defs, err := m.Definitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		reg.AddDefinition(def)
	}
	return nil
}
