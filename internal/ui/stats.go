// Package ui provides statistics display components.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats holds fuzzing run statistics, adapted from the teacher's request
// statistics tracker (internal/ui's original Stats) to the driver loop's
// trial/coverage/mutator metrics instead of HTTP request metrics.
type Stats struct {
	mu sync.RWMutex

	TotalTrials    int64
	AcceptedTrials int64
	FailedAsserts  int64

	StartTime    time.Time
	LastTrialAt  time.Time

	CoveragePopcount int64
	MaxCoverage      int64
	CorpusSize       int64
	TotalTicks       int64

	ActiveMutator    string
	ActiveMutatorIdx int64
	ActiveMutatorMax int64
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// RecordTrial records one mutator trial's outcome, mirroring the original
// RecordRequest's role of folding one unit of work into the running totals.
func (s *Stats) RecordTrial(accepted bool, failedAssert bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalTrials++
	s.LastTrialAt = time.Now()
	if accepted {
		s.AcceptedTrials++
	}
	if failedAssert {
		s.FailedAsserts++
	}
}

// UpdateCoverage records the corpus's current achieved/max coverage and
// work-list size.
func (s *Stats) UpdateCoverage(achieved, max, corpusSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CoveragePopcount = int64(achieved)
	s.MaxCoverage = int64(max)
	s.CorpusSize = int64(corpusSize)
}

// UpdateActiveMutator records which mutator is currently running, for the
// TUI's live status line.
func (s *Stats) UpdateActiveMutator(name string, idx, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ActiveMutator = name
	s.ActiveMutatorIdx = int64(idx)
	s.ActiveMutatorMax = int64(max)
}

// UpdateTicks records the simulator adapter's total cycle count.
func (s *Stats) UpdateTicks(ticks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalTicks = int64(ticks)
}

// GetTrialsPerSecond returns the current trial throughput.
func (s *Stats) GetTrialsPerSecond() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed < 1 {
		return 0
	}
	return float64(s.TotalTrials) / elapsed
}

// GetElapsedTime returns the elapsed time since the run started.
func (s *Stats) GetElapsedTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.StartTime)
}

// GetAcceptRate returns the percentage of trials the corpus accepted.
func (s *Stats) GetAcceptRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.TotalTrials == 0 {
		return 0
	}
	return float64(s.AcceptedTrials) / float64(s.TotalTrials) * 100
}

// Snapshot returns an immutable copy of the current stats.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		TotalTrials:      s.TotalTrials,
		AcceptedTrials:   s.AcceptedTrials,
		FailedAsserts:    s.FailedAsserts,
		CoveragePopcount: s.CoveragePopcount,
		MaxCoverage:      s.MaxCoverage,
		CorpusSize:       s.CorpusSize,
		TotalTicks:       s.TotalTicks,
		ActiveMutator:    s.ActiveMutator,
		ActiveMutatorIdx: s.ActiveMutatorIdx,
		ActiveMutatorMax: s.ActiveMutatorMax,
		ElapsedTime:      time.Since(s.StartTime),
		TrialsPerSecond:  s.GetTrialsPerSecond(),
		AcceptRate:       s.GetAcceptRate(),
	}
}

// StatsSnapshot is an immutable snapshot of Stats.
type StatsSnapshot struct {
	TotalTrials      int64
	AcceptedTrials   int64
	FailedAsserts    int64
	CoveragePopcount int64
	MaxCoverage      int64
	CorpusSize       int64
	TotalTicks       int64
	ActiveMutator    string
	ActiveMutatorIdx int64
	ActiveMutatorMax int64
	ElapsedTime      time.Duration
	TrialsPerSecond  float64
	AcceptRate       float64
}

// StatsView renders the statistics panel.
type StatsView struct {
	width  int
	height int
}

// NewStatsView creates a new stats view.
func NewStatsView(width, height int) *StatsView {
	return &StatsView{width: width, height: height}
}

// SetSize updates the view size.
func (v *StatsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Render renders the stats view.
func (v *StatsView) Render(snap StatsSnapshot) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("📊 Coverage"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Coverage", fmt.Sprintf("%d / %d", snap.CoveragePopcount, snap.MaxCoverage)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Corpus Size", formatNumber(snap.CorpusSize)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Total Ticks", formatNumber(snap.TotalTicks)))
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("⚡ Mutator"))
	b.WriteString("\n\n")

	b.WriteString(RenderLabelValue("Total Trials", formatNumber(snap.TotalTrials)))
	b.WriteString("\n")
	b.WriteString(RenderLabel("Accepted"))
	b.WriteString(" ")
	b.WriteString(SuccessStyle.Render(formatNumber(snap.AcceptedTrials)))
	b.WriteString(" | ")
	b.WriteString(RenderLabel("Accept Rate"))
	b.WriteString(" ")
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%.1f%%", snap.AcceptRate)))
	b.WriteString("\n")
	if snap.ActiveMutator != "" {
		b.WriteString(RenderLabelValue("Active", fmt.Sprintf("%s (%d/%d)", snap.ActiveMutator, snap.ActiveMutatorIdx, snap.ActiveMutatorMax)))
		b.WriteString("\n")
	}
	b.WriteString(RenderLabelValue("Trials/sec", fmt.Sprintf("%.1f", snap.TrialsPerSecond)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Elapsed", formatDuration(snap.ElapsedTime)))
	b.WriteString("\n\n")

	if snap.FailedAsserts > 0 {
		b.WriteString(HeaderStyle.Render("🔍 Assertions"))
		b.WriteString("\n\n")
		b.WriteString(AnomalyHighStyle.Render(fmt.Sprintf("Failed: %d", snap.FailedAsserts)))
		b.WriteString("\n")
	}

	return StatsPanelStyle.Width(v.width).Render(b.String())
}

// Helper functions

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
