package planstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"versionup/internal/compat"
	"versionup/internal/media"
	"versionup/internal/planstore"
	"versionup/internal/resolve"
	"versionup/internal/swap"
	"versionup/internal/timeline"
)

func openStore(t *testing.T) *planstore.Store {
	t.Helper()
	store, err := planstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePlan(id string, created time.Time) *resolve.Plan {
	r := media.FrameRange{Start: 1001, End: 1150}
	return &resolve.Plan{
		ID:        id,
		CreatedAt: created,
		Timeline:  "/edits/reel1.json",
		Track:     "V1",
		Clips: []resolve.ClipReport{
			{
				Clip:           timeline.Clip{ID: "c1", SourcePath: "/r/BG_v01.%04d.exr", OutFrame: 89, SourceStartFrame: 1001, SourceEndFrame: 1100},
				ShotKey:        "BG",
				CurrentVersion: 1,
				HighestVersion: 2,
				UsableVersion:  2,
				Outcome:        resolve.OutcomeUpdateAvailable,
				Instruction: swap.Instruction{
					ClipID: "c1", OldPath: "/r/BG_v01.%04d.exr", NewPath: "/r/BG_v02.%04d.exr",
					CurrentVersion: 1, NewVersion: 2, SourceRange: &r, Status: swap.StatusCompatible,
				},
			},
			{
				Clip:        timeline.Clip{ID: "c2", SourcePath: "/r/FG_v03.mov"},
				Outcome:     resolve.OutcomeIncompatible,
				Instruction: swap.Instruction{ClipID: "c2", Status: swap.StatusIncompatible, Reason: compat.FrameOffsetMismatch},
			},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := samplePlan("6f1c2a9e-0000-4000-8000-000000000001", created)

	if err := store.Save(ctx, plan); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entry, err := store.Get(ctx, plan.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !entry.CreatedAt.Equal(created) || entry.Track != "V1" || entry.Clips != 2 {
		t.Fatalf("unexpected record %+v", entry.Record)
	}
	if entry.Counts.UpdateAvailable != 1 || entry.Counts.Incompatible != 1 {
		t.Fatalf("unexpected counts %+v", entry.Counts)
	}
	if entry.Applied() || entry.Summary != nil {
		t.Fatal("new plan should not be applied")
	}
	got := entry.Plan.Clips[0].Instruction
	if got.NewPath != "/r/BG_v02.%04d.exr" || got.SourceRange == nil || got.SourceRange.End != 1150 {
		t.Fatalf("instruction did not round trip: %+v", got)
	}
	if len(entry.Plan.Pending()) != 1 {
		t.Fatalf("expected one pending clip, got %d", len(entry.Plan.Pending()))
	}

	byPrefix, err := store.Get(ctx, "6f1c2a9e")
	if err != nil || byPrefix.ID != plan.ID {
		t.Fatalf("Get by prefix = %v, %v", byPrefix, err)
	}
}

func TestGetErrors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"aaaa-1", "aaaa-2"} {
		if err := store.Save(ctx, samplePlan(id, now)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Get(ctx, "aaaa"); !errors.Is(err, planstore.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
	if _, err := store.Get(ctx, "zzzz"); !errors.Is(err, planstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "aaaa_"); !errors.Is(err, planstore.ErrNotFound) {
		t.Fatalf("LIKE wildcards should be escaped, got %v", err)
	}
}

func TestLatestAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, planstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		if err := store.Save(ctx, samplePlan(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	latest, err := store.Latest(ctx)
	if err != nil || latest.ID != "p3" {
		t.Fatalf("Latest = %v, %v", latest, err)
	}
	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].ID != "p3" || records[1].ID != "p2" {
		t.Fatalf("unexpected listing %+v", records)
	}
	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List(0) = %d, %v", len(all), err)
	}
}

func TestMarkApplied(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	plan := samplePlan("applied-1", time.Now())
	if err := store.Save(ctx, plan); err != nil {
		t.Fatal(err)
	}
	summary := resolve.ApplySummary{
		PlanID:  plan.ID,
		Applied: 1,
		Skipped: 1,
		Results: []resolve.ApplyResult{{ClipID: "c1", Status: resolve.ApplyApplied}},
	}
	if err := store.MarkApplied(ctx, plan.ID, summary); err != nil {
		t.Fatalf("MarkApplied: %v", err)
	}
	entry, err := store.Get(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !entry.Applied() || entry.Summary == nil || entry.Summary.Applied != 1 {
		t.Fatalf("apply not recorded: %+v", entry)
	}
	if err := store.MarkApplied(ctx, "missing", summary); !errors.Is(err, planstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.Readable || health.Plans != 1 || health.Pending != 0 || health.SchemaVersion != 1 {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := store.Save(ctx, samplePlan("old", now.AddDate(0, 0, -100))); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, samplePlan("new", now)); err != nil {
		t.Fatal(err)
	}
	removed, err := store.Prune(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, planstore.ErrNotFound) {
		t.Fatalf("old plan should be gone, got %v", err)
	}
}

func TestReopenKeepsPlans(t *testing.T) {
	dir := t.TempDir()
	store, err := planstore.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), samplePlan("keep", time.Now())); err != nil {
		t.Fatal(err)
	}
	store.Close()

	again, err := planstore.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if _, err := again.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	store, err := planstore.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	db, err := sql.Open("sqlite", filepath.Join(dir, planstore.DBName))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := planstore.Open(dir); !errors.Is(err, planstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestApplyLock(t *testing.T) {
	dir := t.TempDir()
	first, err := planstore.AcquireApplyLock(dir)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := planstore.AcquireApplyLock(dir); !errors.Is(err, planstore.ErrApplyInProgress) {
		t.Fatalf("expected ErrApplyInProgress, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	second, err := planstore.AcquireApplyLock(dir)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = second.Release()
}
