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

// CreateApplication records a candidate joining a job's pipeline. The
// application starts on the workflow's first stage (order 0) with a creation
// transition attributed to the acting recruiter.
func (s *Store) CreateApplication(ctx context.Context, req NewApplication) (*Application, error) {
	if strings.TrimSpace(req.CandidateID) == "" {
		return nil, Wrap("create application", fmt.Errorf("%w: candidate id is required", ErrValidation))
	}
	actor := strings.TrimSpace(req.ActorID)
	if actor == "" {
		actor = SystemActor
	}

	var created *Application
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := workflowExists(ctx, tx, req.WorkflowID); err != nil {
			return Wrap("create application", err)
		}
		row := tx.QueryRowContext(ctx, `SELECT id FROM stages WHERE workflow_id = ? AND stage_order = 0`, req.WorkflowID)
		var initialStageID string
		if err := row.Scan(&initialStageID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Wrap("create application", fmt.Errorf("%w: workflow has no stages", ErrValidation))
			}
			return fmt.Errorf("initial stage: %w", err)
		}

		now := time.Now().UTC()
		app := &Application{
			ID:             uuid.NewString(),
			CandidateID:    req.CandidateID,
			CandidateName:  req.CandidateName,
			CandidateEmail: req.CandidateEmail,
			JobID:          req.JobID,
			LocationID:     req.LocationID,
			DepartmentID:   req.DepartmentID,
			WorkflowID:     req.WorkflowID,
			CurrentStageID: initialStageID,
			EnteredStageAt: now,
			SubStatus:      SubStatusNone,
			Version:        0,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO applications (`+applicationColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			app.ID,
			app.CandidateID,
			nullableString(app.CandidateName),
			nullableString(app.CandidateEmail),
			nullableString(app.JobID),
			nullableString(app.LocationID),
			nullableString(app.DepartmentID),
			app.WorkflowID,
			app.CurrentStageID,
			formatTime(now),
			string(app.SubStatus),
			app.Version,
			formatTime(now),
			formatTime(now),
		); err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		if err := appendTransition(ctx, tx, app.ID, "", initialStageID, actor, now); err != nil {
			return err
		}
		created = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetApplication fetches an application by identifier.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Wrap("get application", ErrApplicationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ApplicationsByWorkflow returns every application bound to a workflow,
// ordered by creation time. The view projector treats the result as its
// read snapshot.
func (s *Store) ApplicationsByWorkflow(ctx context.Context, workflowID string) ([]*Application, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+applicationColumns+` FROM applications WHERE workflow_id = ? ORDER BY created_at, id`,
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// History returns the append-only transition sequence for an application.
func (s *Store) History(ctx context.Context, applicationID string) ([]*Transition, error) {
	ctx = ensureContext(ctx)
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+transitionColumns+` FROM transitions WHERE application_id = ? ORDER BY seq`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var history []*Transition
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, tr)
	}
	return history, rows.Err()
}

// MoveApplication validates and executes a stage move under optimistic
// concurrency. Validation order: existence, version, workflow membership,
// terminal lock (when configured), then the idempotent same-stage no-op.
// A stale expectedVersion is never retried here; the caller must refetch.
func (s *Store) MoveApplication(ctx context.Context, applicationID, targetStageID, actorID string, expectedVersion int64) (*Application, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, Wrap("move application", fmt.Errorf("%w: actor id is required", ErrValidation))
	}

	var moved *Application
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, applicationID)
		app, err := scanApplication(row)
		if errors.Is(err, sql.ErrNoRows) {
			return Wrap("move application", ErrApplicationNotFound)
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}

		if app.Version != expectedVersion {
			return Wrap("move application", fmt.Errorf("%w: have %d, expected %d", ErrStaleVersion, app.Version, expectedVersion))
		}

		stageRow := tx.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM stages WHERE id = ?`, targetStageID)
		target, err := scanStage(stageRow)
		if errors.Is(err, sql.ErrNoRows) {
			return Wrap("move application", ErrWorkflowMismatch)
		}
		if err != nil {
			return fmt.Errorf("load target stage: %w", err)
		}
		if target.WorkflowID != app.WorkflowID {
			return Wrap("move application", ErrWorkflowMismatch)
		}

		if s.lockTerminal && app.CurrentStageID != targetStageID {
			currentRow := tx.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM stages WHERE id = ?`, app.CurrentStageID)
			current, err := scanStage(currentRow)
			if err != nil {
				return fmt.Errorf("load current stage: %w", err)
			}
			if current.Type.IsTerminal() {
				return Wrap("move application", fmt.Errorf("%w: %s", ErrStageLocked, current.Name))
			}
		}

		if app.CurrentStageID == targetStageID {
			moved = app
			return nil
		}

		now := time.Now().UTC()
		if err := appendTransition(ctx, tx, app.ID, app.CurrentStageID, targetStageID, actorID, now); err != nil {
			return err
		}
		res, err := tx.ExecContext(
			ctx,
			`UPDATE applications
             SET current_stage_id = ?, entered_stage_at = ?, sub_status = '', version = version + 1, updated_at = ?
             WHERE id = ? AND version = ?`,
			targetStageID, formatTime(now), formatTime(now), app.ID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return Wrap("move application", ErrStaleVersion)
		}

		app.CurrentStageID = targetStageID
		app.EnteredStageAt = now
		app.SubStatus = SubStatusNone
		app.Version = expectedVersion + 1
		app.UpdatedAt = now
		moved = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// SetSubStatus writes the externally-owned scheduling signal under the same
// compare-and-set discipline as stage moves. It does not touch the stage,
// the stage clock, or the history.
func (s *Store) SetSubStatus(ctx context.Context, applicationID string, subStatus SubStatus, expectedVersion int64) (*Application, error) {
	if _, ok := subStatusSet[subStatus]; !ok {
		return nil, Wrap("set substatus", fmt.Errorf("%w: %q", ErrInvalidSubStatus, subStatus))
	}

	var updated *Application
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, applicationID)
		app, err := scanApplication(row)
		if errors.Is(err, sql.ErrNoRows) {
			return Wrap("set substatus", ErrApplicationNotFound)
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}
		if app.Version != expectedVersion {
			return Wrap("set substatus", fmt.Errorf("%w: have %d, expected %d", ErrStaleVersion, app.Version, expectedVersion))
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE applications SET sub_status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
			string(subStatus), formatTime(now), app.ID, expectedVersion,
		); err != nil {
			return fmt.Errorf("update substatus: %w", err)
		}
		app.SubStatus = subStatus
		app.Version = expectedVersion + 1
		app.UpdatedAt = now
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func appendTransition(ctx context.Context, tx *sql.Tx, applicationID, fromStageID, toStageID, actorID string, at time.Time) error {
	var nextSeq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM transitions WHERE application_id = ?`, applicationID).Scan(&nextSeq); err != nil {
		return fmt.Errorf("next transition seq: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO transitions (application_id, seq, from_stage_id, to_stage_id, actor_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		applicationID, nextSeq, nullableString(fromStageID), toStageID, actorID, formatTime(at),
	); err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// StageCounts returns the number of applications currently on each stage of
// a workflow, keyed by stage id.
func (s *Store) StageCounts(ctx context.Context, workflowID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT current_stage_id, COUNT(1) FROM applications WHERE workflow_id = ? GROUP BY current_stage_id`,
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("stage counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var stageID string
		var count int
		if err := rows.Scan(&stageID, &count); err != nil {
			return nil, err
		}
		counts[stageID] = count
	}
	return counts, rows.Err()
}
