// Package driver implements the warm-up/seed/pop-mutate-evaluate-reinsert
// loop that drives the whole fuzzing core, ported from the original core's
// toplevel.cc fuzz() entry point.
package driver

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/flaviensolt/rtlfuzz/internal/config"
	"github.com/flaviensolt/rtlfuzz/internal/corpus"
	"github.com/flaviensolt/rtlfuzz/internal/dashboard"
	"github.com/flaviensolt/rtlfuzz/internal/mutator"
	"github.com/flaviensolt/rtlfuzz/internal/persist"
	"github.com/flaviensolt/rtlfuzz/internal/queue"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
	"github.com/flaviensolt/rtlfuzz/internal/simulator"
	"github.com/flaviensolt/rtlfuzz/internal/ui"
)

// ErrInvalidSeed is returned when the all-zero seed sequence itself trips an
// assertion, mirroring the original's "abort — invalid seed" exit path.
var ErrInvalidSeed = errors.New("driver: seed queue failed an assertion, DUT or reset sequence is broken")

// MutatorStat tallies how many trials one named mutator ran and how many of
// those trials produced a child the corpus accepted, for the end-of-run
// report (spec.md §4.6's "per-mutator trial counts").
type MutatorStat struct {
	Name     string
	Trials   int
	Accepted int
}

// Stats summarizes one driver run, printed at the end mirroring the
// original's end-of-run statistics block.
type Stats struct {
	MaxCoverage     int
	AchievedCoverage int
	TotalTicks      int
	FinalBits       string
	Mutators        []MutatorStat
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Driver owns the widths, PRNG stream, and buffer pool shared by every
// trial in a run, mirroring the single process-wide resources the original
// core's main() sets up once (spec.md §5's shared-resource policy).
type Driver struct {
	cfg  *config.FuzzConfig
	sim  simulator.Adapter
	rng  *rand.Rand
	pool *rtlbits.BufferPool
	log  *slog.Logger

	inputWidth  rtlbits.Width
	covWidth    rtlbits.Width
	assertWidth rtlbits.Width

	writer    *persist.Writer
	covDumper *persist.CoverageDumper

	statsSink *ui.Stats
	dashboard *dashboard.Server
}

// WithPersistence attaches a persist.Writer so accepted queues and
// assertion-failing children are snapshotted off the hot path, mirroring
// spec.md §4.8's write-behind corpus/crash store. Passing a nil writer
// disables persistence (the default).
func (d *Driver) WithPersistence(w *persist.Writer) *Driver {
	d.writer = w
	return d
}

// WithCoverageDump attaches a persist.CoverageDumper so every accepted
// child also gets a tick-stamped coverage snapshot, mirroring spec.md §6's
// optional WRITE_COVERAGE dump. Passing nil disables the dump (the
// default).
func (d *Driver) WithCoverageDump(cd *persist.CoverageDumper) *Driver {
	d.covDumper = cd
	return d
}

// WithStatsSink attaches the TUI's live stats model so every trial and
// acceptance updates the --tui progress view instead of leaving it frozen
// at its seed-time state. Passing nil disables the live feed (the default).
func (d *Driver) WithStatsSink(s *ui.Stats) *Driver {
	d.statsSink = s
	return d
}

// WithDashboard attaches the --web live dashboard so it receives a stats
// snapshot after every trial and a coverage event on every corpus-accepted
// child, instead of
// serving its empty initial state for the whole run. Passing nil disables
// the dashboard feed (the default).
func (d *Driver) WithDashboard(s *dashboard.Server) *Driver {
	d.dashboard = s
	return d
}

// reportStats pushes the current standing to whichever of statsSink/
// dashboard are attached, called after each trial.
func (d *Driver) reportStats(c *corpus.Corpus, totalTrials, accepted int, mutatorName string, mutatorIdx, mutatorMax int) {
	achieved := c.CoverageAmount()
	corpusSize := c.Len()
	ticks := d.sim.TickCount()

	if d.statsSink != nil {
		d.statsSink.UpdateCoverage(achieved, d.cfg.NCovPoints, corpusSize)
		d.statsSink.UpdateActiveMutator(mutatorName, mutatorIdx, mutatorMax)
		d.statsSink.UpdateTicks(ticks)
	}

	if d.dashboard != nil {
		d.dashboard.UpdateStats(dashboard.Stats{
			CorpusSize:       int64(corpusSize),
			CoveragePopcount: int64(achieved),
			MaxCoverage:      int64(d.cfg.NCovPoints),
			TotalTicks:       int64(ticks),
			TotalTrials:      int64(totalTrials),
			AcceptedTrials:   int64(accepted),
			ActiveMutator:    mutatorName,
		})
	}
}

// reportAccept pushes a coverage-growth event for one corpus-accepted child
// to the attached dashboard, carrying how many new bits it contributed and
// the corpus-wide total afterward.
func (d *Driver) reportAccept(newBits, totalAfter int) {
	if d.dashboard == nil {
		return
	}
	d.dashboard.BroadcastCoverageEvent(dashboard.CoverageEvent{
		NewBits:    newBits,
		TotalAfter: totalAfter,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// New builds a Driver for the given config and simulator adapter. A nil
// logger falls back to slog.Default(), matching the teacher's logger
// fallback convention in internal/requester.
func New(cfg *config.FuzzConfig, sim simulator.Adapter, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		cfg:         cfg,
		sim:         sim,
		rng:         rand.New(rand.NewSource(cfg.RandomSeed)),
		pool:        rtlbits.NewBufferPool(),
		log:         log,
		inputWidth:  rtlbits.NewWidth(cfg.NFuzzInputs),
		covWidth:    rtlbits.NewWidth(cfg.NCovPoints),
		assertWidth: rtlbits.NewWidth(cfg.NAsserts),
	}
}

// newQueue builds an empty queue sized to this run's widths.
func (d *Driver) newQueue() *queue.Queue {
	return queue.New(d.inputWidth, d.covWidth, d.assertWidth)
}

// runQueue drives q's pending inputs through the simulator one cycle at a
// time (meta-reset, reset, then one apply+tick+read per Input), pulling the
// retired inputs and per-cycle outputs back into q afterward, mirroring the
// "Each 'run' is a single coverage-bearing trial" paragraph of spec.md §4.6.
func (d *Driver) runQueue(q *queue.Queue) {
	d.sim.MetaReset()
	d.sim.Reset()

	pending := q.TakePendingInputs()
	d.sim.PushInputs(pending)
	for d.sim.HasInput() {
		d.sim.ApplyNextInput()
		d.sim.Tick()
		d.sim.ReadOutput()
	}

	q.AppendInputs(d.sim.TakeRetiredInputs())
	q.AppendOutputs(d.sim.TakeOutputs())
}

// warmUp runs 1000 random inputs before seeding, mirroring spec.md §4.6's
// warm-up step. The warm-up queue's outputs are discarded; only the tick
// count advances the simulator's internal state the same way the original's
// warm-up loop does.
func (d *Driver) warmUp() {
	q := d.newQueue()
	q.GenerateInputs(1000, d.rng)
	d.runQueue(q)
}

// seed builds and runs the N_ZEROS_SEED all-zero seed queue, mirroring
// spec.md §4.6's seeding step. ErrInvalidSeed is returned if the seed itself
// trips an assertion.
func (d *Driver) seed() (*queue.Queue, error) {
	q := d.newQueue()
	q.Seed(d.cfg.NZerosSeed)
	d.runQueue(q)
	if q.AccumulatedOutput().Failed() {
		return nil, ErrInvalidSeed
	}
	return q, nil
}

// mutateChild applies one mutation trial of m against q's current flat byte
// view and returns a brand new queue holding the mutated bytes, mirroring
// Mutator::apply_next in the original core's mutator.cc.
func (d *Driver) mutateChild(q *queue.Queue, m *mutator.Mutator) *queue.Queue {
	buf := q.FlatBytes(d.pool)
	m.ApplyNext(buf)
	child := q.NewQueueFromFlatBytes(buf)
	d.pool.Put(buf)
	return child
}

// persistAccepted snapshots a corpus-accepted queue and, if coverage
// dumping is enabled, its tick-stamped coverage bitmap, both dispatched
// off the hot path through the attached persist.Writer.
func (d *Driver) persistAccepted(q *queue.Queue) {
	if d.writer == nil {
		return
	}
	d.writer.Submit("write-queue", func() error {
		_, err := persist.WriteQueue(d.cfg.CorpusDir, q)
		return err
	})
	if d.covDumper != nil {
		if out := q.AccumulatedOutput(); out != nil {
			d.writer.Submit("write-coverage-dump", func() error {
				_, err := d.covDumper.Dump(d.sim, out)
				return err
			})
		}
	}
}

// persistCrash snapshots an assertion-failing queue through the attached
// persist.Writer.
func (d *Driver) persistCrash(q *queue.Queue) {
	if d.writer == nil {
		return
	}
	d.writer.Submit("write-crash", func() error {
		_, err := persist.WriteCrash(d.cfg.CrashDir, q)
		return err
	})
}

// Run executes the full warm-up/seed/pop-mutate-evaluate-reinsert loop and
// returns end-of-run statistics, mirroring toplevel.cc's fuzz().
func (d *Driver) Run() (Stats, error) {
	stats := Stats{StartedAt: time.Now(), MaxCoverage: d.cfg.NCovPoints}
	statIdx := map[string]int{}

	d.sim.Init()
	c := corpus.New(d.log)

	d.log.Info("running warm-up", "n_inputs", 1000)
	d.warmUp()

	d.log.Info("running seed queue", "n_zeros_seed", d.cfg.NZerosSeed)
	seedQueue, err := d.seed()
	if err != nil {
		return stats, err
	}
	c.Add(seedQueue)

	totalTrials := 0
	totalAccepted := 0
deadline:
	for !c.Empty() {
		q := c.Pop()
		wordsPerInput := d.inputWidth.Words
		mutators := mutator.AllFamily(q.Size(), wordsPerInput, d.rng)

		for _, m := range mutators {
			idx, ok := statIdx[m.Name]
			if !ok {
				idx = len(stats.Mutators)
				statIdx[m.Name] = idx
				stats.Mutators = append(stats.Mutators, MutatorStat{Name: m.Name})
			}

			for !m.IsDone() {
				child := d.mutateChild(q, m)
				d.runQueue(child)
				stats.Mutators[idx].Trials++
				totalTrials++

				before := c.CoverageAmount()
				accepted := c.IsInteresting(child)
				failedAssert := false
				if accepted {
					c.Add(child)
					stats.Mutators[idx].Accepted++
					totalAccepted++
					d.persistAccepted(child)
					d.reportAccept(c.CoverageAmount()-before, c.CoverageAmount())
				} else if out := child.AccumulatedOutput(); out != nil && out.Failed() {
					failedAssert = true
					d.persistCrash(child)
				}

				if d.statsSink != nil {
					d.statsSink.RecordTrial(accepted, failedAssert)
				}
				d.reportStats(c, totalTrials, totalAccepted, m.Name, m.Idx(), m.Max())

				if d.cfg.MaxExecs > 0 && totalTrials >= d.cfg.MaxExecs {
					d.log.Info("max executions reached, stopping", "max_execs", d.cfg.MaxExecs)
					break deadline
				}
				if d.cfg.Timeout > 0 && time.Since(stats.StartedAt) >= d.cfg.Timeout {
					d.log.Info("timeout reached, stopping", "timeout", d.cfg.Timeout)
					break deadline
				}
			}
		}
	}

	if d.writer != nil {
		d.writer.Wait()
	}

	d.sim.Finish()

	stats.FinishedAt = time.Now()
	stats.TotalTicks = d.sim.TickCount()
	stats.AchievedCoverage = c.CoverageAmount()
	if out := c.GlobalOutput(); out != nil {
		stats.FinalBits = out.Bits()
	}

	d.log.Info("fuzzing run complete",
		"achieved_coverage", stats.AchievedCoverage,
		"max_coverage", stats.MaxCoverage,
		"total_ticks", stats.TotalTicks,
		"duration", stats.FinishedAt.Sub(stats.StartedAt),
	)
	return stats, nil
}
