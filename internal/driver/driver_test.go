package driver

import (
	"testing"

	"github.com/flaviensolt/rtlfuzz/internal/config"
	"github.com/flaviensolt/rtlfuzz/internal/mutator"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
	"github.com/flaviensolt/rtlfuzz/internal/simulator"
)

func testConfig() *config.FuzzConfig {
	cfg := config.DefaultConfig()
	cfg.NFuzzInputs = 16
	cfg.NCovPoints = 32
	cfg.NAsserts = 4
	cfg.NResetTicks = 1
	cfg.NMetaResetTicks = 1
	cfg.NZerosSeed = 4
	cfg.RandomSeed = 7
	return cfg
}

func newTestDriver(cfg *config.FuzzConfig) (*Driver, simulator.Adapter) {
	sim := simulator.NewReferenceAdapter(
		rtlbits.NewWidth(cfg.NFuzzInputs),
		rtlbits.NewWidth(cfg.NCovPoints),
		rtlbits.NewWidth(cfg.NAsserts),
		cfg.NResetTicks,
		cfg.NMetaResetTicks,
	)
	return New(cfg, sim, nil), sim
}

func TestRunQueueRestoresPendingInputs(t *testing.T) {
	cfg := testConfig()
	d, _ := newTestDriver(cfg)
	q := d.newQueue()
	q.Seed(5)
	d.runQueue(q)
	if q.Size() != 5 {
		t.Fatalf("queue size after run = %d, want 5 (retired inputs must return to pending)", q.Size())
	}
	if q.AccumulatedOutput() == nil {
		t.Fatal("running a queue must record an accumulated output")
	}
}

func TestSeedAllZeroNeverFails(t *testing.T) {
	cfg := testConfig()
	d, _ := newTestDriver(cfg)
	q, err := d.seed()
	if err != nil {
		t.Fatalf("all-zero seed must not trip an assertion in the reference adapter: %v", err)
	}
	if q.Size() != cfg.NZerosSeed {
		t.Fatalf("seed queue size = %d, want %d", q.Size(), cfg.NZerosSeed)
	}
}

func TestRunCompletesAndDrainsCorpus(t *testing.T) {
	cfg := testConfig()
	d, _ := newTestDriver(cfg)

	stats, err := d.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.TotalTicks <= 0 {
		t.Error("TotalTicks must be positive after a run")
	}
	if stats.MaxCoverage != cfg.NCovPoints {
		t.Errorf("MaxCoverage = %d, want %d", stats.MaxCoverage, cfg.NCovPoints)
	}
	if len(stats.Mutators) != 20 {
		t.Errorf("len(Mutators) = %d, want 20", len(stats.Mutators))
	}
	total := 0
	for _, m := range stats.Mutators {
		total += m.Trials
	}
	if total == 0 {
		t.Error("expected at least one mutator trial to have run")
	}
}

func TestMutateChildProducesIndependentQueue(t *testing.T) {
	cfg := testConfig()
	d, _ := newTestDriver(cfg)
	q := d.newQueue()
	q.Seed(3)

	m := mutator.DetFamily(q.Size()*d.inputWidth.Words*4, d.rng)[0]
	child := d.mutateChild(q, m)
	if child == q {
		t.Fatal("mutateChild must return a distinct queue")
	}
	if child.Size() != q.Size() {
		t.Fatalf("child size = %d, want %d", child.Size(), q.Size())
	}
}
