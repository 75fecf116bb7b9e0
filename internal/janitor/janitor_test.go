package janitor

import (
	"testing"
	"time"
)

type fakePruneStore struct {
	cutoffs []time.Time
	pruned  int64
}

func (f *fakePruneStore) PruneBefore(cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.pruned, nil
}

func TestParseCron(t *testing.T) {
	if _, err := ParseCron("0 3 * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if _, err := ParseCron("not a cron"); err == nil {
		t.Error("invalid expression accepted")
	}
}

func TestNew_Validation(t *testing.T) {
	store := &fakePruneStore{}

	if _, err := New(store, "0 3 * * *", 0); err == nil {
		t.Error("zero retention should be rejected")
	}
	if _, err := New(store, "bogus", 24*time.Hour); err == nil {
		t.Error("bad cron should be rejected")
	}
	if _, err := New(store, "0 3 * * *", 24*time.Hour); err != nil {
		t.Errorf("valid janitor rejected: %v", err)
	}
}

func TestSweep_CutoffRespectsRetention(t *testing.T) {
	store := &fakePruneStore{pruned: 3}
	j, err := New(store, "0 3 * * *", 48*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	n, err := j.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Sweep = %d, want 3", n)
	}

	if len(store.cutoffs) != 1 {
		t.Fatalf("PruneBefore called %d times", len(store.cutoffs))
	}
	want := time.Now().Add(-48 * time.Hour)
	got := store.cutoffs[0]
	if got.After(want.Add(time.Minute)) || got.Before(want.Add(-time.Minute)) {
		t.Errorf("cutoff = %v, want roughly %v", got, want)
	}
}

func TestNextRun(t *testing.T) {
	j, err := New(&fakePruneStore{}, "0 3 * * *", 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	next := j.NextRun()
	if !next.After(time.Now()) {
		t.Errorf("NextRun = %v, want a future time", next)
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("NextRun = %v, want 03:00", next)
	}
}
