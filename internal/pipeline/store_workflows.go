package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateWorkflow inserts a new workflow with zero stages.
func (s *Store) CreateWorkflow(ctx context.Context, name string) (*Workflow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Wrap("create workflow", fmt.Errorf("%w: name is required", ErrValidation))
	}

	now := time.Now().UTC()
	wf := &Workflow{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := retryOnBusy(ensureContext(ctx), func() error {
		_, execErr := s.db.ExecContext(
			ctx,
			`INSERT INTO workflows (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			wf.ID, wf.Name, formatTime(now), formatTime(now),
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return wf, nil
}

// GetWorkflow fetches a workflow by identifier.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Wrap("get workflow", ErrWorkflowNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

// ListWorkflows returns all workflows ordered by creation time.
func (s *Store) ListWorkflows(ctx context.Context) ([]*Workflow, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+workflowColumns+` FROM workflows ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// DeleteWorkflow removes a workflow and its stages. Fails with ErrWorkflowInUse
// while any application still references the workflow.
func (s *Store) DeleteWorkflow(ctx context.Context, workflowID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := workflowExists(ctx, tx, workflowID); err != nil {
			return Wrap("delete workflow", err)
		}
		var inUse int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications WHERE workflow_id = ?`, workflowID).Scan(&inUse); err != nil {
			return fmt.Errorf("count applications: %w", err)
		}
		if inUse > 0 {
			return Wrap("delete workflow", ErrWorkflowInUse)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM stages WHERE workflow_id = ?`, workflowID); err != nil {
			return fmt.Errorf("delete stages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, workflowID); err != nil {
			return fmt.Errorf("delete workflow: %w", err)
		}
		return nil
	})
}

// AddStage appends a stage at the end of the workflow's sequence.
// A dueDays of zero means the stage carries no SLA.
func (s *Store) AddStage(ctx context.Context, workflowID, name string, stageType StageType, dueDays int) (*Stage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Wrap("add stage", fmt.Errorf("%w: name is required", ErrValidation))
	}
	if _, ok := stageTypeSet[stageType]; !ok {
		return nil, Wrap("add stage", fmt.Errorf("%w: %q", ErrInvalidStageType, stageType))
	}
	if dueDays < 0 {
		return nil, Wrap("add stage", fmt.Errorf("%w: due days must not be negative", ErrValidation))
	}

	stage := &Stage{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Name:       name,
		Type:       stageType,
		DueDays:    dueDays,
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := workflowExists(ctx, tx, workflowID); err != nil {
			return Wrap("add stage", err)
		}
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM stages WHERE workflow_id = ?`, workflowID).Scan(&count); err != nil {
			return fmt.Errorf("count stages: %w", err)
		}
		stage.Order = count
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO stages (id, workflow_id, name, type, stage_order, due_days) VALUES (?, ?, ?, ?, ?, ?)`,
			stage.ID, stage.WorkflowID, stage.Name, string(stage.Type), stage.Order, stage.DueDays,
		); err != nil {
			return fmt.Errorf("insert stage: %w", err)
		}
		return touchWorkflow(ctx, tx, workflowID)
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// GetStages returns a workflow's stages in pipeline order.
func (s *Store) GetStages(ctx context.Context, workflowID string) ([]*Stage, error) {
	ctx = ensureContext(ctx)
	if _, err := s.GetWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	return s.stagesFor(ctx, s.db, workflowID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) stagesFor(ctx context.Context, q querier, workflowID string) ([]*Stage, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+stageColumns+` FROM stages WHERE workflow_id = ? ORDER BY stage_order`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []*Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

// ReorderStages assigns new orders from the position of each id in
// orderedStageIDs, which must be an exact permutation of the workflow's
// current stage ids.
func (s *Store) ReorderStages(ctx context.Context, workflowID string, orderedStageIDs []string) ([]*Stage, error) {
	var reordered []*Stage
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := workflowExists(ctx, tx, workflowID); err != nil {
			return Wrap("reorder stages", err)
		}
		existing, err := s.stagesFor(ctx, tx, workflowID)
		if err != nil {
			return err
		}
		if len(orderedStageIDs) != len(existing) {
			return Wrap("reorder stages", fmt.Errorf("%w: got %d ids, workflow has %d stages", ErrInvalidReorder, len(orderedStageIDs), len(existing)))
		}
		known := make(map[string]struct{}, len(existing))
		for _, stage := range existing {
			known[stage.ID] = struct{}{}
		}
		seen := make(map[string]struct{}, len(orderedStageIDs))
		for _, id := range orderedStageIDs {
			if _, ok := known[id]; !ok {
				return Wrap("reorder stages", fmt.Errorf("%w: unknown stage %s", ErrInvalidReorder, id))
			}
			if _, dup := seen[id]; dup {
				return Wrap("reorder stages", fmt.Errorf("%w: duplicate stage %s", ErrInvalidReorder, id))
			}
			seen[id] = struct{}{}
		}

		// Two passes keep the UNIQUE (workflow_id, stage_order) constraint
		// satisfied while orders shuffle.
		offset := len(existing)
		for position, id := range orderedStageIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE stages SET stage_order = ? WHERE id = ?`, position+offset, id); err != nil {
				return fmt.Errorf("stage order pass one: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE stages SET stage_order = stage_order - ? WHERE workflow_id = ?`, offset, workflowID); err != nil {
			return fmt.Errorf("stage order pass two: %w", err)
		}
		if err := touchWorkflow(ctx, tx, workflowID); err != nil {
			return err
		}
		reordered, err = s.stagesFor(ctx, tx, workflowID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// RemoveStage deletes a stage from a workflow. Applications currently on the
// stage block removal unless migrateTo names another stage in the same
// workflow; those applications are then moved there with a synthetic
// transition attributed to SystemActor. Remaining orders are renumbered.
func (s *Store) RemoveStage(ctx context.Context, workflowID, stageID, migrateTo string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := workflowExists(ctx, tx, workflowID); err != nil {
			return Wrap("remove stage", err)
		}
		stages, err := s.stagesFor(ctx, tx, workflowID)
		if err != nil {
			return err
		}
		byID := make(map[string]*Stage, len(stages))
		for _, stage := range stages {
			byID[stage.ID] = stage
		}
		if _, ok := byID[stageID]; !ok {
			return Wrap("remove stage", ErrStageNotFound)
		}

		var occupied int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications WHERE current_stage_id = ?`, stageID).Scan(&occupied); err != nil {
			return fmt.Errorf("count stage applications: %w", err)
		}
		if occupied > 0 {
			if migrateTo == "" {
				return Wrap("remove stage", ErrStageHasActiveCandidates)
			}
			if _, ok := byID[migrateTo]; !ok || migrateTo == stageID {
				return Wrap("remove stage", ErrInvalidMigrateTarget)
			}
			if err := migrateStageApplications(ctx, tx, stageID, migrateTo); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM stages WHERE id = ?`, stageID); err != nil {
			return fmt.Errorf("delete stage: %w", err)
		}

		// Renumber survivors densely, preserving relative order.
		offset := len(stages)
		position := 0
		for _, stage := range stages {
			if stage.ID == stageID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE stages SET stage_order = ? WHERE id = ?`, position+offset, stage.ID); err != nil {
				return fmt.Errorf("renumber pass one: %w", err)
			}
			position++
		}
		if _, err := tx.ExecContext(ctx, `UPDATE stages SET stage_order = stage_order - ? WHERE workflow_id = ?`, offset, workflowID); err != nil {
			return fmt.Errorf("renumber pass two: %w", err)
		}
		return touchWorkflow(ctx, tx, workflowID)
	})
}

func migrateStageApplications(ctx context.Context, tx *sql.Tx, fromStageID, toStageID string) error {
	rows, err := tx.QueryContext(ctx, `SELECT id, version FROM applications WHERE current_stage_id = ?`, fromStageID)
	if err != nil {
		return fmt.Errorf("query stage applications: %w", err)
	}
	type target struct {
		id      string
		version int64
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.id, &t.version); err != nil {
			rows.Close()
			return err
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, t := range targets {
		if err := appendTransition(ctx, tx, t.id, fromStageID, toStageID, SystemActor, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE applications
             SET current_stage_id = ?, entered_stage_at = ?, sub_status = '', version = version + 1, updated_at = ?
             WHERE id = ? AND version = ?`,
			toStageID, formatTime(now), formatTime(now), t.id, t.version,
		); err != nil {
			return fmt.Errorf("migrate application %s: %w", t.id, err)
		}
	}
	return nil
}

func workflowExists(ctx context.Context, tx *sql.Tx, workflowID string) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM workflows WHERE id = ?`, workflowID).Scan(&count); err != nil {
		return fmt.Errorf("check workflow: %w", err)
	}
	if count == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}

func touchWorkflow(ctx context.Context, tx *sql.Tx, workflowID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE workflows SET updated_at = ? WHERE id = ?`, formatTime(time.Now().UTC()), workflowID); err != nil {
		return fmt.Errorf("touch workflow: %w", err)
	}
	return nil
}

// defaultStageSeed mirrors the recruiting workflow the product ships with.
type defaultStageSeed struct {
	name    string
	kind    StageType
	dueDays int
}

var defaultStages = []defaultStageSeed{
	{"Leads", StageTypeLead, 3},
	{"Applicants", StageTypeApplied, 3},
	{"Short List", StageTypeReview, 2},
	{"Screening Call", StageTypeInterview, 14},
	{"Interview", StageTypeInterview, 14},
	{"Final review", StageTypeReview, 14},
	{"Offer", StageTypeOffer, 14},
	{"Hired", StageTypeHired, 0},
	{"Disqualified", StageTypeDisqualified, 0},
	{"Archived", StageTypeNone, 0},
}

// SeedDefaultWorkflow creates the standard ten-stage hiring workflow.
func (s *Store) SeedDefaultWorkflow(ctx context.Context, name string) (*Workflow, error) {
	if strings.TrimSpace(name) == "" {
		name = "Default hiring workflow"
	}
	wf, err := s.CreateWorkflow(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, seed := range defaultStages {
		if _, err := s.AddStage(ctx, wf.ID, seed.name, seed.kind, seed.dueDays); err != nil {
			return nil, err
		}
	}
	return wf, nil
}
