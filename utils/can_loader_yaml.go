package utils

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlMap is the on-disk YAML layout:
//
//	frames:
//	  "0x100":
//	    name: VEHICLE_SPEED
//	    signals:
//	      - {name: speed, start_bit: 32, bit_length: 16, endianness: big, factor: 0.01, offset: -100, unit: km/h}
type yamlMap struct {
	Frames map[string]*FrameDef `yaml:"frames"`
}

func LoadCANMapYAML(path string) (*CANMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadCANMapYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func ReadCANMapYAML(r io.Reader) (*CANMap, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlMap
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	m := newCANMap()
	for key, fd := range doc.Frames {
		if fd == nil {
			fd = &FrameDef{}
		}
		id, err := parseHexOrDecUint32(key)
		if err != nil {
			return nil, fmt.Errorf("invalid frame id %q: %w", key, err)
		}
		fd.ID = id
		if err := m.add(fd); err != nil {
			return nil, err
		}
	}
	return m, nil
}
