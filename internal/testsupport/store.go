package testsupport

import (
	"context"
	"testing"

	"hireflow/internal/config"
	"hireflow/internal/pipeline"
)

// MustOpenStore opens a pipeline.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *pipeline.Store {
	t.Helper()

	store, err := pipeline.Open(cfg)
	if err != nil {
		t.Fatalf("pipeline.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedWorkflow creates the standard hiring workflow and returns it with its
// ordered stages.
func SeedWorkflow(t testing.TB, store *pipeline.Store, name string) (*pipeline.Workflow, []*pipeline.Stage) {
	t.Helper()

	wf, err := store.SeedDefaultWorkflow(context.Background(), name)
	if err != nil {
		t.Fatalf("store.SeedDefaultWorkflow: %v", err)
	}
	stages, err := store.GetStages(context.Background(), wf.ID)
	if err != nil {
		t.Fatalf("store.GetStages: %v", err)
	}
	return wf, stages
}

// NewApplication creates a test application for the given workflow.
func NewApplication(t testing.TB, store *pipeline.Store, workflowID, candidateID, name string) *pipeline.Application {
	t.Helper()

	app, err := store.CreateApplication(context.Background(), pipeline.NewApplication{
		CandidateID:   candidateID,
		CandidateName: name,
		WorkflowID:    workflowID,
	})
	if err != nil {
		t.Fatalf("store.CreateApplication: %v", err)
	}
	return app
}

// StageNamed finds a stage by display name or fails the test.
func StageNamed(t testing.TB, stages []*pipeline.Stage, name string) *pipeline.Stage {
	t.Helper()

	for _, stage := range stages {
		if stage.Name == name {
			return stage
		}
	}
	t.Fatalf("no stage named %q", name)
	return nil
}
