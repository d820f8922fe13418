package api

import (
	"time"

	"hireflow/internal/pipeline"
	"hireflow/internal/views"
)

// FromWorkflow converts a workflow record to its API representation.
func FromWorkflow(wf *pipeline.Workflow) Workflow {
	if wf == nil {
		return Workflow{}
	}
	dto := Workflow{
		ID:   wf.ID,
		Name: wf.Name,
	}
	if !wf.CreatedAt.IsZero() {
		dto.CreatedAt = wf.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !wf.UpdatedAt.IsZero() {
		dto.UpdatedAt = wf.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromStage converts a stage record to its API representation.
func FromStage(stage *pipeline.Stage) Stage {
	if stage == nil {
		return Stage{}
	}
	return Stage{
		ID:         stage.ID,
		WorkflowID: stage.WorkflowID,
		Name:       stage.Name,
		Type:       string(stage.Type),
		Order:      stage.Order,
		DueDays:    stage.DueDays,
	}
}

// FromStages converts a slice of stage records into API DTOs.
func FromStages(stages []*pipeline.Stage) []Stage {
	if len(stages) == 0 {
		return nil
	}
	out := make([]Stage, 0, len(stages))
	for _, stage := range stages {
		out = append(out, FromStage(stage))
	}
	return out
}

// FromApplication converts an application record to its API representation.
func FromApplication(app *pipeline.Application) Application {
	if app == nil {
		return Application{}
	}
	dto := Application{
		ID:             app.ID,
		CandidateID:    app.CandidateID,
		CandidateName:  app.CandidateName,
		CandidateEmail: app.CandidateEmail,
		JobID:          app.JobID,
		LocationID:     app.LocationID,
		DepartmentID:   app.DepartmentID,
		WorkflowID:     app.WorkflowID,
		CurrentStageID: app.CurrentStageID,
		SubStatus:      string(app.SubStatus),
		Version:        app.Version,
	}
	if !app.EnteredStageAt.IsZero() {
		dto.EnteredStageAt = app.EnteredStageAt.UTC().Format(dateTimeFormat)
	}
	if !app.CreatedAt.IsZero() {
		dto.CreatedAt = app.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !app.UpdatedAt.IsZero() {
		dto.UpdatedAt = app.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromTransition converts a history record to its API representation.
func FromTransition(tr *pipeline.Transition) Transition {
	if tr == nil {
		return Transition{}
	}
	dto := Transition{
		ApplicationID: tr.ApplicationID,
		Seq:           tr.Seq,
		FromStageID:   tr.FromStageID,
		ToStageID:     tr.ToStageID,
		ActorID:       tr.ActorID,
	}
	if !tr.Timestamp.IsZero() {
		dto.Timestamp = tr.Timestamp.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromTransitions converts a slice of history records into API DTOs.
func FromTransitions(transitions []*pipeline.Transition) []Transition {
	if len(transitions) == 0 {
		return nil
	}
	out := make([]Transition, 0, len(transitions))
	for _, tr := range transitions {
		out = append(out, FromTransition(tr))
	}
	return out
}

// FromViewItem converts a projector item into its API representation.
func FromViewItem(item views.Item) ViewItem {
	dto := ViewItem{
		Application: FromApplication(item.Application),
		Phase:       string(item.Phase),
		DaysInStage: item.DaysInStage,
		Breached:    item.Breached,
	}
	if item.Stage != nil {
		dto.StageName = item.Stage.Name
		dto.StageType = string(item.Stage.Type)
	}
	if item.HasDeadline {
		dto.Deadline = item.Deadline.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromViewItems converts a slice of projector items into API DTOs.
func FromViewItems(items []views.Item) []ViewItem {
	out := make([]ViewItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromViewItem(item))
	}
	return out
}

// FromCounts converts sidebar totals into their API representation.
func FromCounts(counts views.Counts) CountsResponse {
	phases := make(map[string]int, len(counts.Phases))
	for phase, n := range counts.Phases {
		phases[string(phase)] = n
	}
	return CountsResponse{
		Total:       counts.Total,
		Phases:      phases,
		Jobs:        counts.Jobs,
		Locations:   counts.Locations,
		Departments: counts.Departments,
	}
}

// FormatTimestamp renders a time in the API wire format.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
