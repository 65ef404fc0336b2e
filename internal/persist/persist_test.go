package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/flaviensolt/rtlfuzz/internal/queue"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

type fakeTickSource struct{ ticks int }

func (f fakeTickSource) TickCount() int { return f.ticks }

func TestWriteQueueRoundTrips(t *testing.T) {
	dir := t.TempDir()
	iw := rtlbits.NewWidth(8)
	cw := rtlbits.NewWidth(4)
	aw := rtlbits.NewWidth(1)
	q := queue.New(iw, cw, aw)
	q.Seed(2)
	q.TakePendingInputs()

	path, err := WriteQueue(dir, q)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap queueSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.InputWords) != 2 {
		t.Errorf("len(InputWords) = %d, want 2", len(snap.InputWords))
	}
}

func TestWriteQueueIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	iw := rtlbits.NewWidth(8)
	cw := rtlbits.NewWidth(4)
	aw := rtlbits.NewWidth(1)
	q := queue.New(iw, cw, aw)
	q.Seed(3)
	q.TakePendingInputs()

	path1, err := WriteQueue(dir, q)
	if err != nil {
		t.Fatal(err)
	}
	path2, err := WriteQueue(dir, q)
	if err != nil {
		t.Fatal(err)
	}
	if path1 != path2 {
		t.Errorf("identical queues must hash to the same path: %s vs %s", path1, path2)
	}
}

func TestCoverageDumperWritesTickStampedFile(t *testing.T) {
	dir := t.TempDir()
	cw := rtlbits.NewWidth(8)
	aw := rtlbits.NewWidth(1)
	out := rtlbits.NewOutput(cw, aw)
	out.Coverage().Set(3)

	dumper := NewCoverageDumper(dir)
	path, err := dumper.Dump(fakeTickSource{ticks: 42}, out)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "42.json" {
		t.Errorf("dump path = %s, want 42.json", filepath.Base(path))
	}

	var record covDumpRecord
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatal(err)
	}
	if record.Ticks != 42 {
		t.Errorf("Ticks = %d, want 42", record.Ticks)
	}
	if len(record.Coverage) != 8 || record.Coverage[3] != 1 {
		t.Errorf("unexpected coverage array: %v", record.Coverage)
	}
}

func TestWriterSubmitRunsTask(t *testing.T) {
	w, err := NewWriter(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	done := make(chan struct{}, 1)
	w.Submit("test", func() error {
		done <- struct{}{}
		return nil
	})
	w.Wait()
	select {
	case <-done:
	default:
		t.Fatal("submitted task did not run")
	}
	if w.Stats().Completed != 1 {
		t.Errorf("Completed = %d, want 1", w.Stats().Completed)
	}
}
