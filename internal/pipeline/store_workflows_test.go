package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"hireflow/internal/pipeline"
	"hireflow/internal/testsupport"
)

func TestCreateWorkflowAndAddStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, err := store.CreateWorkflow(ctx, "Engineering hiring")
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	if wf.ID == "" {
		t.Fatal("expected workflow ID to be assigned")
	}

	first, err := store.AddStage(ctx, wf.ID, "Leads", pipeline.StageTypeLead, 3)
	if err != nil {
		t.Fatalf("AddStage failed: %v", err)
	}
	second, err := store.AddStage(ctx, wf.ID, "Interview", pipeline.StageTypeInterview, 14)
	if err != nil {
		t.Fatalf("AddStage failed: %v", err)
	}
	if first.Order != 0 || second.Order != 1 {
		t.Fatalf("orders = %d,%d, want 0,1", first.Order, second.Order)
	}

	stages, err := store.GetStages(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetStages failed: %v", err)
	}
	assertDenseOrders(t, stages)
}

func TestCreateWorkflowRejectsEmptyName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.CreateWorkflow(context.Background(), "   "); !errors.Is(err, pipeline.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAddStageRejectsUnknownType(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, err := store.CreateWorkflow(ctx, "Typed")
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	if _, err := store.AddStage(ctx, wf.ID, "Weird", pipeline.StageType("weird"), 0); !errors.Is(err, pipeline.ErrInvalidStageType) {
		t.Fatalf("expected ErrInvalidStageType, got %v", err)
	}
	if _, err := store.AddStage(ctx, wf.ID, "Negative", pipeline.StageTypeLead, -1); !errors.Is(err, pipeline.ErrValidation) {
		t.Fatalf("expected ErrValidation for negative due days, got %v", err)
	}
}

func TestSeedDefaultWorkflowShape(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, stages := testsupport.SeedWorkflow(t, store, "Default")
	if len(stages) != 10 {
		t.Fatalf("stages = %d, want 10", len(stages))
	}
	assertDenseOrders(t, stages)
	if stages[0].Name != "Leads" || stages[7].Name != "Hired" || stages[9].Name != "Archived" {
		t.Fatalf("unexpected seed order: %s / %s / %s", stages[0].Name, stages[7].Name, stages[9].Name)
	}
	if stages[3].DueDays != 14 {
		t.Fatalf("Screening Call dueDays = %d, want 14", stages[3].DueDays)
	}
}

func TestReorderStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, stages := testsupport.SeedWorkflow(t, store, "Reorder")

	// Reverse the pipeline.
	ids := make([]string, 0, len(stages))
	for i := len(stages) - 1; i >= 0; i-- {
		ids = append(ids, stages[i].ID)
	}
	reordered, err := store.ReorderStages(ctx, wf.ID, ids)
	if err != nil {
		t.Fatalf("ReorderStages failed: %v", err)
	}
	assertDenseOrders(t, reordered)
	if reordered[0].ID != stages[len(stages)-1].ID {
		t.Fatalf("expected %s first after reversal, got %s", stages[len(stages)-1].Name, reordered[0].Name)
	}
}

func TestReorderStagesRejectsBadPermutations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, stages := testsupport.SeedWorkflow(t, store, "Strict")

	short := []string{stages[0].ID}
	if _, err := store.ReorderStages(ctx, wf.ID, short); !errors.Is(err, pipeline.ErrInvalidReorder) {
		t.Fatalf("expected ErrInvalidReorder for short list, got %v", err)
	}

	dup := make([]string, len(stages))
	for i, stage := range stages {
		dup[i] = stage.ID
	}
	dup[1] = dup[0]
	if _, err := store.ReorderStages(ctx, wf.ID, dup); !errors.Is(err, pipeline.ErrInvalidReorder) {
		t.Fatalf("expected ErrInvalidReorder for duplicate, got %v", err)
	}

	foreign := make([]string, len(stages))
	copy(foreign, dup)
	foreign[0] = stages[0].ID
	foreign[1] = "not-a-stage"
	if _, err := store.ReorderStages(ctx, wf.ID, foreign); !errors.Is(err, pipeline.ErrInvalidReorder) {
		t.Fatalf("expected ErrInvalidReorder for unknown id, got %v", err)
	}
}

func TestRemoveStageRenumbersDensely(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, stages := testsupport.SeedWorkflow(t, store, "Trim")

	victim := testsupport.StageNamed(t, stages, "Short List")
	if err := store.RemoveStage(ctx, wf.ID, victim.ID, ""); err != nil {
		t.Fatalf("RemoveStage failed: %v", err)
	}

	remaining, err := store.GetStages(ctx, wf.ID)
	if err != nil {
		t.Fatalf("GetStages failed: %v", err)
	}
	if len(remaining) != len(stages)-1 {
		t.Fatalf("stages = %d, want %d", len(remaining), len(stages)-1)
	}
	assertDenseOrders(t, remaining)
	for _, stage := range remaining {
		if stage.ID == victim.ID {
			t.Fatal("removed stage still present")
		}
	}
}

func TestRemoveStageMigratesOccupants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, stages := testsupport.SeedWorkflow(t, store, "Migrate")
	app := testsupport.NewApplication(t, store, wf.ID, "cand-1", "Ada Lovelace")

	leads := testsupport.StageNamed(t, stages, "Leads")
	applicants := testsupport.StageNamed(t, stages, "Applicants")
	if app.CurrentStageID != leads.ID {
		t.Fatalf("application starts on %s, want Leads", app.CurrentStageID)
	}

	// Occupied stage without a target refuses removal.
	if err := store.RemoveStage(ctx, wf.ID, leads.ID, ""); !errors.Is(err, pipeline.ErrStageHasActiveCandidates) {
		t.Fatalf("expected ErrStageHasActiveCandidates, got %v", err)
	}
	// The removed stage itself is not a valid target.
	if err := store.RemoveStage(ctx, wf.ID, leads.ID, leads.ID); !errors.Is(err, pipeline.ErrInvalidMigrateTarget) {
		t.Fatalf("expected ErrInvalidMigrateTarget, got %v", err)
	}

	if err := store.RemoveStage(ctx, wf.ID, leads.ID, applicants.ID); err != nil {
		t.Fatalf("RemoveStage with target failed: %v", err)
	}

	migrated, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication failed: %v", err)
	}
	if migrated.CurrentStageID != applicants.ID {
		t.Fatalf("application on %s, want Applicants", migrated.CurrentStageID)
	}
	if migrated.Version != app.Version+1 {
		t.Fatalf("version = %d, want %d", migrated.Version, app.Version+1)
	}

	history, err := store.History(ctx, app.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want creation + migration", len(history))
	}
	last := history[len(history)-1]
	if last.ActorID != pipeline.SystemActor {
		t.Fatalf("migration actor = %q, want %q", last.ActorID, pipeline.SystemActor)
	}
	if last.FromStageID != leads.ID || last.ToStageID != applicants.ID {
		t.Fatalf("migration edge = %s -> %s", last.FromStageID, last.ToStageID)
	}
}

func TestDeleteWorkflowRefusesWhileInUse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	wf, _ := testsupport.SeedWorkflow(t, store, "Busy")
	testsupport.NewApplication(t, store, wf.ID, "cand-1", "Grace Hopper")

	if err := store.DeleteWorkflow(ctx, wf.ID); !errors.Is(err, pipeline.ErrWorkflowInUse) {
		t.Fatalf("expected ErrWorkflowInUse, got %v", err)
	}

	empty, err := store.CreateWorkflow(ctx, "Disposable")
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	if err := store.DeleteWorkflow(ctx, empty.ID); err != nil {
		t.Fatalf("DeleteWorkflow failed: %v", err)
	}
	if _, err := store.GetWorkflow(ctx, empty.ID); !errors.Is(err, pipeline.ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func assertDenseOrders(t *testing.T, stages []*pipeline.Stage) {
	t.Helper()
	for i, stage := range stages {
		if stage.Order != i {
			t.Fatalf("stage %q order = %d, want %d", stage.Name, stage.Order, i)
		}
	}
}
