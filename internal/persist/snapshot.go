// Package persist writes interesting queues, crash-producing inputs, and
// coverage-dump snapshots to disk off the fuzzing loop's hot path, adapted
// from the teacher's internal/cache.DiskCache write path and dispatched
// through an ants worker pool the way internal/requester.WorkerPool
// dispatches request work.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/flaviensolt/rtlfuzz/internal/queue"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

// queueSnapshot is the on-disk representation of a Queue, serialized as
// JSON rather than the teacher's gob format since the snapshot is meant to
// be post-mortem-inspectable, not just round-trippable.
type queueSnapshot struct {
	InputWords [][]uint32 `json:"input_words"`
	Coverage   string     `json:"coverage,omitempty"`
}

// Hash derives the content-addressed filename a queue snapshot is written
// under, mirroring DiskCache.Set's sha256-of-key naming scheme.
func Hash(q *queue.Queue) string {
	var words []uint32
	for _, in := range q.AppliedInputs() {
		words = append(words, in.Words()...)
	}
	if len(words) == 0 {
		words = flattenPending(q)
	}
	sum := sha256.New()
	for _, w := range words {
		sum.Write([]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)})
	}
	return hex.EncodeToString(sum.Sum(nil))
}

func flattenPending(q *queue.Queue) []uint32 {
	var words []uint32
	buf := q.FlatBytes(rtlbits.NewBufferPool())
	for i := 0; i+3 < len(buf); i += 4 {
		words = append(words, uint32(buf[i])|uint32(buf[i+1])<<8|uint32(buf[i+2])<<16|uint32(buf[i+3])<<24)
	}
	return words
}

func snapshotOf(q *queue.Queue) queueSnapshot {
	snap := queueSnapshot{}
	for _, in := range q.AppliedInputs() {
		snap.InputWords = append(snap.InputWords, append([]uint32(nil), in.Words()...))
	}
	if out := q.AccumulatedOutput(); out != nil {
		snap.Coverage = out.Bits()
	}
	return snap
}

// WriteQueue serializes q to {corpusDir}/queue/{hash}.json, mirroring the
// corpus-snapshot half of spec.md §4.8.
func WriteQueue(corpusDir string, q *queue.Queue) (string, error) {
	dir := filepath.Join(corpusDir, "queue")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := Hash(q)
	path := filepath.Join(dir, name+".json")
	data, err := json.Marshal(snapshotOf(q))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCrash serializes q (a queue whose accumulated output reported
// Failed()) to {crashDir}/{hash}.json, mirroring the crash half of
// spec.md §4.8.
func WriteCrash(crashDir string, q *queue.Queue) (string, error) {
	dir := crashDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := Hash(q)
	path := filepath.Join(dir, name+".json")
	data, err := json.Marshal(snapshotOf(q))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
