// Package report generates end-of-run statistics reports for a fuzzing
// driver run. It is JSON-only: the teacher's HTML generator existed to
// render human-facing dashboards over HTTP-fuzzing anomaly findings, and
// has no equivalent worth preserving for RTL coverage bitmaps (see
// DESIGN.md).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/flaviensolt/rtlfuzz/internal/driver"
)

// MutatorStat mirrors driver.MutatorStat with JSON tags for the report.
type MutatorStat struct {
	Name     string `json:"name"`
	Trials   int    `json:"trials"`
	Accepted int    `json:"accepted"`
}

// Report is the end-of-run summary spec.md requires the driver to print:
// max possible coverage, achieved popcount, total cycle count, final
// coverage bitmap, plus per-mutator trial counts.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	MaxCoverage      int    `json:"max_coverage"`
	AchievedCoverage int    `json:"achieved_coverage"`
	TotalTicks       int    `json:"total_ticks"`
	FinalBits        string `json:"final_bits"`

	Mutators []MutatorStat `json:"mutators"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`
}

// FromStats converts a driver.Stats into a Report ready for serialization.
func FromStats(st driver.Stats) *Report {
	mutators := make([]MutatorStat, 0, len(st.Mutators))
	for _, m := range st.Mutators {
		mutators = append(mutators, MutatorStat{
			Name:     m.Name,
			Trials:   m.Trials,
			Accepted: m.Accepted,
		})
	}

	return &Report{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now(),
		MaxCoverage:      st.MaxCoverage,
		AchievedCoverage: st.AchievedCoverage,
		TotalTicks:       st.TotalTicks,
		FinalBits:        st.FinalBits,
		Mutators:         mutators,
		StartedAt:        st.StartedAt,
		FinishedAt:       st.FinishedAt,
		Duration:         st.FinishedAt.Sub(st.StartedAt).String(),
	}
}

// Generator is the interface for report serialization, kept as an
// interface so alternate encodings could register without touching the
// driver.
type Generator interface {
	Generate(report *Report, w io.Writer) error
}

// Write renders the report with the given generator into dir, naming the
// file after the generation timestamp, and returns the path written.
func Write(dir string, report *Report, gen Generator) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("report_%s.json", report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := gen.Generate(report, f); err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}

	return path, nil
}

// MarshalJSON implements json.Marshaler for Report so callers embedding it
// elsewhere (e.g. the dashboard) get the same shape as the written file.
func (r *Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal((*Alias)(r))
}
