package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

// TickSource reports the current tick count a coverage dump is stamped
// with, satisfied by simulator.Adapter.
type TickSource interface {
	TickCount() int
}

// covDumpRecord mirrors the JSON fields doutput_t::dump writes: a bit-array
// coverage field plus timestamp/ticks.
type covDumpRecord struct {
	Coverage  []int `json:"coverage"`
	Timestamp int64 `json:"timestamp"`
	Ticks     int   `json:"ticks"`
}

// CoverageDumper writes the optional WRITE_COVERAGE snapshot, ported from
// doutput_t::dump in dtypes.cc.
type CoverageDumper struct {
	dir       string
	startedAt time.Time
}

// NewCoverageDumper builds a CoverageDumper rooted at dir, with timestamps
// measured relative to now (the original measures relative to the
// adapter's start_time).
func NewCoverageDumper(dir string) *CoverageDumper {
	return &CoverageDumper{dir: dir, startedAt: time.Now()}
}

// Dump writes out's coverage bitmap to {dir}/{tick_count}.json, mirroring
// doutput_t::dump(tb).
func (c *CoverageDumper) Dump(tb TickSource, out *rtlbits.Output) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}
	covWidth, _ := out.Widths()
	coverage := make([]int, covWidth.Bits)
	for i := 0; i < covWidth.Bits; i++ {
		if out.Coverage().Test(uint(i)) {
			coverage[i] = 1
		}
	}
	record := covDumpRecord{
		Coverage:  coverage,
		Timestamp: time.Since(c.startedAt).Milliseconds(),
		Ticks:     tb.TickCount(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	path := filepath.Join(c.dir, strconv.Itoa(tb.TickCount())+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
