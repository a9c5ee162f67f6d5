package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestRun() *model.Run {
	return &model.Run{
		ID:        model.NewID(),
		Status:    model.StatusPending,
		Engine:    model.EngineStochastic,
		Preset:    "flu",
		Seed:      42,
		Params:    model.DefaultParams(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndGetPreset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := model.DefaultParams()
	p.InitialDead = 4
	p.MortalityRate = 0.1
	if err := s.SavePreset(ctx, "covid", p); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	got, err := s.GetPreset(ctx, "covid")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if got != p {
		t.Errorf("GetPreset = %+v, want %+v", got, p)
	}
}

func TestSavePresetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := model.DefaultParams()
	if err := s.SavePreset(ctx, "flu", p); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	p.TransmissionProbability = 0.4
	if err := s.SavePreset(ctx, "flu", p); err != nil {
		t.Fatalf("SavePreset overwrite: %v", err)
	}

	got, err := s.GetPreset(ctx, "flu")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if got.TransmissionProbability != 0.4 {
		t.Errorf("TransmissionProbability = %v, want 0.4", got.TransmissionProbability)
	}
	names, _ := s.ListPresets(ctx)
	if len(names) != 1 {
		t.Errorf("ListPresets = %v, want one entry", names)
	}
}

func TestPresetNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPreset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPreset error = %v, want ErrNotFound", err)
	}
	if err := s.DeletePreset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePreset error = %v, want ErrNotFound", err)
	}
}

func TestListPresetsSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ListPresets(ctx)
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListPresets on empty store = %#v, want empty non-nil slice", empty)
	}

	for _, name := range []string{"zika", "ebola", "measles"} {
		if err := s.SavePreset(ctx, name, model.DefaultParams()); err != nil {
			t.Fatalf("SavePreset(%s): %v", name, err)
		}
	}
	names, err := s.ListPresets(ctx)
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	want := []string{"ebola", "measles", "zika"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("ListPresets = %v, want %v", names, want)
	}
}

func TestDeletePreset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SavePreset(ctx, "flu", model.DefaultParams()); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if err := s.DeletePreset(ctx, "flu"); err != nil {
		t.Fatalf("DeletePreset: %v", err)
	}
	if _, err := s.GetPreset(ctx, "flu"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPreset after delete = %v, want ErrNotFound", err)
	}
}

func TestSavePresetInvalidName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "../etc", "a/b", ".hidden"} {
		err := s.SavePreset(context.Background(), name, model.DefaultParams())
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("SavePreset(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := makeTestRun()

	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := s.GetRun(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("ID = %q, want %q", got.ID, r.ID)
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.Engine != r.Engine || got.Preset != r.Preset || got.Seed != r.Seed {
		t.Errorf("got engine=%q preset=%q seed=%d", got.Engine, got.Preset, got.Seed)
	}
	if got.Params != r.Params {
		t.Errorf("Params = %+v, want %+v", got.Params, r.Params)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
	if got.StartedAt != nil || got.FinishedAt != nil {
		t.Errorf("timestamps set on pending run: started=%v finished=%v", got.StartedAt, got.FinishedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun error = %v, want ErrNotFound", err)
	}
}

func TestListRunsPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := range 5 {
		r := makeTestRun()
		r.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := s.ListRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Errorf("runs not ordered newest first: %v, %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}

	runs, _, err = s.ListRuns(ctx, 2, 4)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("last page len = %d, want 1", len(runs))
	}
}

func TestUpdateRunStatusLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := makeTestRun()
	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	if err := s.UpdateRunStatus(ctx, r.ID, model.StatusRunning, ""); err != nil {
		t.Fatalf("pending -> running: %v", err)
	}
	got, _ := s.GetRun(ctx, r.ID)
	if got.StartedAt == nil {
		t.Error("started_at not set on running")
	}
	if got.FinishedAt != nil {
		t.Error("finished_at set on running")
	}

	if err := s.UpdateRunStatus(ctx, r.ID, model.StatusFailed, "boom"); err != nil {
		t.Fatalf("running -> failed: %v", err)
	}
	got, _ = s.GetRun(ctx, r.ID)
	if got.Status != model.StatusFailed {
		t.Errorf("Status = %q, want failed", got.Status)
	}
	if got.Error != "boom" {
		t.Errorf("Error = %q, want boom", got.Error)
	}
	if got.FinishedAt == nil {
		t.Error("finished_at not set on failed")
	}
}

func TestUpdateRunStatusInvalidTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := makeTestRun()
	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	if err := s.UpdateRunStatus(ctx, r.ID, model.StatusCompleted, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> completed error = %v, want ErrInvalidTransition", err)
	}

	if err := s.UpdateRunStatus(ctx, r.ID, model.StatusStopped, ""); err != nil {
		t.Fatalf("pending -> stopped: %v", err)
	}
	for _, to := range []string{model.StatusRunning, model.StatusCompleted, model.StatusFailed} {
		if err := s.UpdateRunStatus(ctx, r.ID, to, ""); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("stopped -> %s error = %v, want ErrInvalidTransition", to, err)
		}
	}
}

func TestUpdateRunStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateRunStatus(context.Background(), "nonexistent", model.StatusRunning, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAppendAndGetSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := makeTestRun()
	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	first := []model.Snapshot{
		{Day: 1, Healthy: 9, Infected: 1},
		{Day: 2, Healthy: 8, Exposed: 1, Infected: 1},
	}
	second := []model.Snapshot{
		{Day: 3, Healthy: 7.5, Exposed: 1.25, Infected: 1, Recovered: 0.25},
	}
	if err := s.AppendSnapshots(ctx, r.ID, 2, first); err != nil {
		t.Fatalf("AppendSnapshots: %v", err)
	}
	if err := s.AppendSnapshots(ctx, r.ID, 3, second); err != nil {
		t.Fatalf("AppendSnapshots: %v", err)
	}

	snaps, err := s.GetSnapshots(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetSnapshots: %v", err)
	}
	want := append(first, second...)
	if len(snaps) != len(want) {
		t.Fatalf("len(snaps) = %d, want %d", len(snaps), len(want))
	}
	for i := range want {
		if snaps[i] != want[i] {
			t.Errorf("snaps[%d] = %+v, want %+v", i, snaps[i], want[i])
		}
	}

	got, _ := s.GetRun(ctx, r.ID)
	if got.Elapsed != 3 {
		t.Errorf("Elapsed = %d, want 3", got.Elapsed)
	}
}

func TestAppendSnapshotsDuplicateDayRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := makeTestRun()
	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	if err := s.AppendSnapshots(ctx, r.ID, 1, []model.Snapshot{{Day: 1}}); err != nil {
		t.Fatalf("AppendSnapshots: %v", err)
	}
	if err := s.AppendSnapshots(ctx, r.ID, 2, []model.Snapshot{{Day: 2}, {Day: 1}}); err == nil {
		t.Fatal("AppendSnapshots with duplicate day returned nil error")
	}

	snaps, _ := s.GetSnapshots(ctx, r.ID)
	if len(snaps) != 1 {
		t.Errorf("len(snaps) = %d, want 1 after rollback", len(snaps))
	}
	got, _ := s.GetRun(ctx, r.ID)
	if got.Elapsed != 1 {
		t.Errorf("Elapsed = %d, want 1 after rollback", got.Elapsed)
	}
}

func TestSnapshotsRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSnapshots(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSnapshots error = %v, want ErrNotFound", err)
	}
	if err := s.AppendSnapshots(ctx, "nonexistent", 1, []model.Snapshot{{Day: 1}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendSnapshots error = %v, want ErrNotFound", err)
	}
}

func TestGetRunStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		engine  string
		status  string
		elapsed int
	}{
		{model.EngineStochastic, model.StatusCompleted, 100},
		{model.EngineODE, model.StatusCompleted, 50},
		{model.EngineODE, model.StatusFailed, 0},
		{model.EngineODE, model.StatusPending, 0},
	}
	for _, c := range cases {
		r := makeTestRun()
		r.Engine = c.engine
		r.Status = c.status
		r.Elapsed = c.elapsed
		if err := s.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	stats, err := s.GetRunStats(ctx)
	if err != nil {
		t.Fatalf("GetRunStats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.CountByStatus[model.StatusCompleted] != 2 {
		t.Errorf("completed = %d, want 2", stats.CountByStatus[model.StatusCompleted])
	}
	if stats.CountByEngine[model.EngineODE] != 3 {
		t.Errorf("ode = %d, want 3", stats.CountByEngine[model.EngineODE])
	}
	if stats.AvgElapsedDays != 37.5 {
		t.Errorf("AvgElapsedDays = %v, want 37.5", stats.AvgElapsedDays)
	}
}

func TestGetRunStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.GetRunStats(context.Background())
	if err != nil {
		t.Fatalf("GetRunStats: %v", err)
	}
	if stats.Total != 0 || stats.AvgElapsedDays != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if stats.CountByStatus == nil || stats.CountByEngine == nil {
		t.Error("count maps must be non-nil")
	}
}

func TestMigrationIdempotency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sirsim.db")

	s1, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("first NewSQLiteStore: %v", err)
	}
	if err := s1.SavePreset(context.Background(), "flu", model.DefaultParams()); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	s1.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("second NewSQLiteStore: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetPreset(context.Background(), "flu"); err != nil {
		t.Errorf("GetPreset after reopen: %v", err)
	}
}
