package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadSignalMap reads a signal map, picking the format from the file
// extension: .yaml/.yml for YAML, anything else for CSV.
func LoadSignalMap(path string) (*CANMap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadCANMapYAML(path)
	default:
		return LoadCANMap(path)
	}
}

func LoadCANMap(csvPath string) (*CANMap, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadCANMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}
	return m, nil
}

// ReadCANMap parses a CSV signal map with one signal per row. Rows sharing
// a frame_id belong to the same frame and keep their file order. Errors
// report the file line of the offending row.
func ReadCANMap(r io.Reader) (*CANMap, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	req := []string{
		"frame_id", "signal_name", "start_bit", "bit_length", "signed", "factor", "offset",
	}
	for _, k := range req {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("signal map missing required column: %q", k)
		}
	}
	col := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	m := newCANMap()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		frameID, err := parseHexOrDecUint32(col(rec, "frame_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frame_id %q: %w", line, col(rec, "frame_id"), err)
		}
		frameName := col(rec, "frame_name")

		sig := SignalDef{
			Name:       col(rec, "signal_name"),
			Endianness: col(rec, "endianness"),
			Unit:       col(rec, "unit"),
			Comment:    col(rec, "comment"),
		}
		if sig.Signed, err = parseBool(col(rec, "signed")); err != nil {
			return nil, fmt.Errorf("line %d: invalid signed: %w", line, err)
		}
		if sig.StartBit, err = strconv.Atoi(col(rec, "start_bit")); err != nil {
			return nil, fmt.Errorf("line %d: invalid start_bit: %w", line, err)
		}
		if sig.BitLength, err = strconv.Atoi(col(rec, "bit_length")); err != nil {
			return nil, fmt.Errorf("line %d: invalid bit_length: %w", line, err)
		}
		if sig.Factor, err = strconv.ParseFloat(col(rec, "factor"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid factor: %w", line, err)
		}
		if sig.Offset, err = strconv.ParseFloat(col(rec, "offset"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid offset: %w", line, err)
		}

		dlc := 0
		if s := col(rec, "dlc"); s != "" {
			if dlc, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("line %d: invalid dlc: %w", line, err)
			}
		}

		fd, ok := m.ByID[frameID]
		if !ok {
			fd = &FrameDef{ID: frameID, Name: frameName, DLC: dlc}
			if err := m.add(fd); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if fd.DLC != dlc {
			return nil, fmt.Errorf("line %d: frame %s (0x%X) has inconsistent DLC (%d vs %d)", line, fd.Name, frameID, fd.DLC, dlc)
		}

		fd.Signals = append(fd.Signals, sig)
	}
	return m, nil
}

func parseHexOrDecUint32(s string) (uint32, error) {
	ss := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(ss, "0x") || strings.HasPrefix(ss, "0X") {
		base = 16
		ss = ss[2:]
	}
	u, err := strconv.ParseUint(ss, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
