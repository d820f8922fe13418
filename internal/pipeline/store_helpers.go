package pipeline

import (
	"database/sql"
	"errors"
	"time"
)

const workflowColumns = "id, name, created_at, updated_at"

const stageColumns = "id, workflow_id, name, type, stage_order, due_days"

const applicationColumns = "id, candidate_id, candidate_name, candidate_email, job_id, location_id, department_id, workflow_id, current_stage_id, entered_stage_at, sub_status, version, created_at, updated_at"

const transitionColumns = "application_id, seq, from_stage_id, to_stage_id, actor_id, created_at"

type rowScanner interface{ Scan(dest ...any) error }

func scanWorkflow(scanner rowScanner) (*Workflow, error) {
	var (
		wf         Workflow
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&wf.ID, &wf.Name, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		wf.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		wf.UpdatedAt = updated
	}
	return &wf, nil
}

func scanStage(scanner rowScanner) (*Stage, error) {
	var (
		st      Stage
		typeStr string
	)
	if err := scanner.Scan(&st.ID, &st.WorkflowID, &st.Name, &typeStr, &st.Order, &st.DueDays); err != nil {
		return nil, err
	}
	st.Type = StageType(typeStr)
	return &st, nil
}

func scanApplication(scanner rowScanner) (*Application, error) {
	var (
		app            Application
		candidateName  sql.NullString
		candidateEmail sql.NullString
		jobID          sql.NullString
		locationID     sql.NullString
		departmentID   sql.NullString
		subStatus      string
		enteredRaw     string
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&app.ID,
		&app.CandidateID,
		&candidateName,
		&candidateEmail,
		&jobID,
		&locationID,
		&departmentID,
		&app.WorkflowID,
		&app.CurrentStageID,
		&enteredRaw,
		&subStatus,
		&app.Version,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	app.CandidateName = candidateName.String
	app.CandidateEmail = candidateEmail.String
	app.JobID = jobID.String
	app.LocationID = locationID.String
	app.DepartmentID = departmentID.String
	app.SubStatus = SubStatus(subStatus)
	if entered, err := parseTimeString(enteredRaw); err == nil {
		app.EnteredStageAt = entered
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		app.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		app.UpdatedAt = updated
	}
	return &app, nil
}

func scanTransition(scanner rowScanner) (*Transition, error) {
	var (
		tr         Transition
		fromStage  sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&tr.ApplicationID, &tr.Seq, &fromStage, &tr.ToStageID, &tr.ActorID, &createdRaw); err != nil {
		return nil, err
	}
	tr.FromStageID = fromStage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		tr.Timestamp = created
	}
	return &tr, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
