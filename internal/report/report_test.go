package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flaviensolt/rtlfuzz/internal/driver"
)

func testStats() driver.Stats {
	start := time.Now().Add(-2 * time.Second)
	return driver.Stats{
		MaxCoverage:      128,
		AchievedCoverage: 40,
		TotalTicks:       9001,
		FinalBits:        "deadbeef",
		Mutators: []driver.MutatorStat{
			{Name: "det bitflip 1/1", Trials: 10, Accepted: 2},
			{Name: "havoc", Trials: 50, Accepted: 7},
		},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
}

func TestFromStatsCopiesFields(t *testing.T) {
	st := testStats()
	r := FromStats(st)

	if r.MaxCoverage != st.MaxCoverage || r.AchievedCoverage != st.AchievedCoverage {
		t.Errorf("coverage mismatch: got max=%d achieved=%d", r.MaxCoverage, r.AchievedCoverage)
	}
	if r.TotalTicks != st.TotalTicks {
		t.Errorf("TotalTicks = %d, want %d", r.TotalTicks, st.TotalTicks)
	}
	if r.FinalBits != st.FinalBits {
		t.Errorf("FinalBits = %q, want %q", r.FinalBits, st.FinalBits)
	}
	if len(r.Mutators) != len(st.Mutators) {
		t.Fatalf("Mutators length = %d, want %d", len(r.Mutators), len(st.Mutators))
	}
	if r.Mutators[1].Name != "havoc" || r.Mutators[1].Accepted != 7 {
		t.Errorf("unexpected mutator entry: %+v", r.Mutators[1])
	}
	if r.Duration != st.FinishedAt.Sub(st.StartedAt).String() {
		t.Errorf("Duration = %q", r.Duration)
	}
	if r.RunID == "" {
		t.Error("expected a non-empty RunID")
	}
}

func TestJSONGeneratorProducesValidJSON(t *testing.T) {
	r := FromStats(testStats())
	gen := &JSONGenerator{Indent: true}

	var buf bytes.Buffer
	if err := gen.Generate(r, &buf); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("generated report is not valid JSON: %v", err)
	}
	if decoded["total_ticks"].(float64) != 9001 {
		t.Errorf("total_ticks = %v, want 9001", decoded["total_ticks"])
	}
	if decoded["final_bits"] != "deadbeef" {
		t.Errorf("final_bits = %v, want deadbeef", decoded["final_bits"])
	}
}

func TestJSONGeneratorGenerateBytes(t *testing.T) {
	r := FromStats(testStats())
	gen := &JSONGenerator{}

	b, err := gen.GenerateBytes(r)
	if err != nil {
		t.Fatalf("GenerateBytes returned error: %v", err)
	}
	if !bytes.Contains(b, []byte("havoc")) {
		t.Error("expected mutator name in generated bytes")
	}
}

func TestWriteCreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	r := FromStats(testStats())

	path, err := Write(dir, r, &JSONGenerator{Indent: true})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Write wrote outside dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written report: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written report is not valid JSON: %v", err)
	}
	if decoded.MaxCoverage != r.MaxCoverage {
		t.Errorf("round-tripped MaxCoverage = %d, want %d", decoded.MaxCoverage, r.MaxCoverage)
	}
}

func BenchmarkJSONGenerator_Generate(b *testing.B) {
	r := FromStats(testStats())
	gen := &JSONGenerator{Indent: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		gen.Generate(r, &buf)
	}
}
