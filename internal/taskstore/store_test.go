package taskstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/briefpress/briefpress/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string) *domain.Run {
	now := time.Now()
	return &domain.Run{
		ID:        id,
		Email:     "dev@example.com",
		Task:      "demo",
		Round:     1,
		Nonce:     "n1",
		Brief:     "a counter app",
		Status:    domain.RunReceived,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := testStore(t)

	if err := store.SaveRun(sampleRun("r1")); err != nil {
		t.Fatal(err)
	}

	run, err := store.GetRun("r1")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil {
		t.Fatal("run not found")
	}
	if run.Task != "demo" || run.Round != 1 || run.Status != domain.RunReceived {
		t.Errorf("roundtrip mismatch: %+v", run)
	}
}

func TestGetRun_Missing(t *testing.T) {
	store := testStore(t)

	run, err := store.GetRun("nope")
	if err != nil {
		t.Fatal(err)
	}
	if run != nil {
		t.Errorf("missing run should be nil, got %+v", run)
	}
}

func TestUpdateRunStatus(t *testing.T) {
	store := testStore(t)
	store.SaveRun(sampleRun("r1"))

	if err := store.UpdateRunStatus("r1", domain.RunFailed, "repository task-2 not found"); err != nil {
		t.Fatal(err)
	}

	run, _ := store.GetRun("r1")
	if run.Status != domain.RunFailed {
		t.Errorf("Status = %s, want failed", run.Status)
	}
	if run.Error != "repository task-2 not found" {
		t.Errorf("Error = %q", run.Error)
	}
}

func TestUpdateRunResult(t *testing.T) {
	store := testStore(t)
	store.SaveRun(sampleRun("r1"))

	res := &domain.PublishResult{
		RepoURL:   "https://github.com/octocat/demo-1",
		CommitSHA: "abc123",
		PagesURL:  "https://octocat.github.io/demo-1/",
	}
	if err := store.UpdateRunResult("r1", domain.RunNotifying, res); err != nil {
		t.Fatal(err)
	}

	run, _ := store.GetRun("r1")
	if run.RepoURL != res.RepoURL || run.CommitSHA != res.CommitSHA || run.PagesURL != res.PagesURL {
		t.Errorf("result not persisted: %+v", run)
	}
}

func TestListRuns_Filters(t *testing.T) {
	store := testStore(t)

	r1 := sampleRun("r1")
	r2 := sampleRun("r2")
	r2.Task = "other"
	r2.Status = domain.RunComplete
	store.SaveRun(r1)
	store.SaveRun(r2)

	runs, err := store.ListRuns(ListOptions{Task: "demo"})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "r1" {
		t.Errorf("task filter returned %d runs", len(runs))
	}

	runs, _ = store.ListRuns(ListOptions{Status: domain.RunComplete})
	if len(runs) != 1 || runs[0].ID != "r2" {
		t.Errorf("status filter returned %d runs", len(runs))
	}

	runs, _ = store.ListRuns(ListOptions{Limit: 1})
	if len(runs) != 1 {
		t.Errorf("limit ignored, got %d runs", len(runs))
	}
}

func TestCountByStatus(t *testing.T) {
	store := testStore(t)

	r1 := sampleRun("r1")
	r2 := sampleRun("r2")
	r2.Status = domain.RunComplete
	r3 := sampleRun("r3")
	r3.Status = domain.RunComplete
	store.SaveRun(r1)
	store.SaveRun(r2)
	store.SaveRun(r3)

	counts, err := store.CountByStatus()
	if err != nil {
		t.Fatal(err)
	}
	if counts[domain.RunReceived] != 1 || counts[domain.RunComplete] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestPruneBefore(t *testing.T) {
	store := testStore(t)

	old := sampleRun("old")
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	recent := sampleRun("recent")
	store.SaveRun(old)
	store.SaveRun(recent)

	n, err := store.PruneBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}

	run, _ := store.GetRun("recent")
	if run == nil {
		t.Error("recent run should survive the prune")
	}
}
