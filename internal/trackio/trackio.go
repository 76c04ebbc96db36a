// Package trackio reads and writes tracks as CSV.
//
// One row per cycle: bead,cycle,v0,v1,... An empty cell or "nan" is a
// missing sample. Lines starting with '#' are ignored. Rows may come in any
// order; cycles a bead does not list are empty.
package trackio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrFormat is returned for rows that cannot be parsed.
var ErrFormat = errors.New("trackio: bad row")

// Read parses a track from r.
func Read(r io.Reader) (map[int][][]float32, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := map[int][][]float32{}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("trackio.Read: %w", err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w %d: need bead and cycle", ErrFormat, line)
		}
		bead, err1 := strconv.Atoi(rec[0])
		cycle, err2 := strconv.Atoi(rec[1])
		if err := errors.Join(err1, err2); err != nil || bead < 0 || cycle < 0 {
			return nil, fmt.Errorf("%w %d: bead/cycle %q,%q", ErrFormat, line, rec[0], rec[1])
		}

		vals := make([]float32, len(rec)-2)
		for i, cell := range rec[2:] {
			if vals[i], err = parse(cell); err != nil {
				return nil, fmt.Errorf("%w %d: column %d: %w", ErrFormat, line, i+2, err)
			}
		}
		cycles := out[bead]
		for len(cycles) <= cycle {
			cycles = append(cycles, nil)
		}
		cycles[cycle] = vals
		out[bead] = cycles
	}
}

func parse(cell string) (float32, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return float32(math.NaN()), nil
	}
	v, err := strconv.ParseFloat(cell, 32)

	return float32(v), err
}

// Write writes track to w, beads in increasing order. Missing samples are
// written as empty cells.
func Write(w io.Writer, track map[int][][]float32) error {
	ids := make([]int, 0, len(track))
	for id := range track {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cw := csv.NewWriter(w)
	for _, id := range ids {
		for c, cycle := range track[id] {
			rec := make([]string, 0, len(cycle)+2)
			rec = append(rec, strconv.Itoa(id), strconv.Itoa(c))
			for _, v := range cycle {
				if math.IsNaN(float64(v)) {
					rec = append(rec, "")
					continue
				}
				rec = append(rec, strconv.FormatFloat(float64(v), 'g', -1, 32))
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("trackio.Write: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("trackio.Write: %w", err)
	}

	return nil
}

// ReadFile is Read on the file at path; "-" reads stdin.
func ReadFile(path string) (map[int][][]float32, error) {
	if path == "-" {
		return Read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trackio.ReadFile: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// WriteFile is Write to the file at path; "-" writes stdout.
func WriteFile(path string, track map[int][][]float32) error {
	if path == "-" {
		return Write(os.Stdout, track)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trackio.WriteFile: %w", err)
	}
	if err := Write(f, track); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
