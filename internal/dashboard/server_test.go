package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestHandleStatsReturnsCurrentSnapshot(t *testing.T) {
	s := NewServer(nil)
	s.UpdateStats(Stats{CorpusSize: 3, CoveragePopcount: 12, MaxCoverage: 64})

	req, _ := http.NewRequest(http.MethodGet, "/api/stats", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var got Stats
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.CorpusSize != 3 || got.CoveragePopcount != 12 || got.MaxCoverage != 64 {
		t.Errorf("unexpected stats: %+v", got)
	}
}

func TestHandleIndexServesHTML(t *testing.T) {
	s := NewServer(nil)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		t.Error("expected a Content-Type header on the index page")
	}
}

func TestBroadcastCoverageEventDoesNotBlockWithoutClients(t *testing.T) {
	s := NewServer(nil)
	done := make(chan struct{})
	go func() {
		s.BroadcastCoverageEvent(CoverageEvent{NewBits: 2, TotalAfter: 10, Timestamp: 1})
		close(done)
	}()
	<-done
}
