package api

import (
	"context"
	"time"

	"hireflow/internal/pipeline"
	"hireflow/internal/views"
)

// PipelineStore abstracts the persistence operations the API layer needs.
type PipelineStore interface {
	CreateWorkflow(ctx context.Context, name string) (*pipeline.Workflow, error)
	SeedDefaultWorkflow(ctx context.Context, name string) (*pipeline.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*pipeline.Workflow, error)
	ListWorkflows(ctx context.Context) ([]*pipeline.Workflow, error)
	DeleteWorkflow(ctx context.Context, workflowID string) error
	AddStage(ctx context.Context, workflowID, name string, stageType pipeline.StageType, dueDays int) (*pipeline.Stage, error)
	GetStages(ctx context.Context, workflowID string) ([]*pipeline.Stage, error)
	ReorderStages(ctx context.Context, workflowID string, orderedStageIDs []string) ([]*pipeline.Stage, error)
	RemoveStage(ctx context.Context, workflowID, stageID, migrateTo string) error
	CreateApplication(ctx context.Context, req pipeline.NewApplication) (*pipeline.Application, error)
	GetApplication(ctx context.Context, id string) (*pipeline.Application, error)
	ApplicationsByWorkflow(ctx context.Context, workflowID string) ([]*pipeline.Application, error)
	History(ctx context.Context, applicationID string) ([]*pipeline.Transition, error)
	MoveApplication(ctx context.Context, applicationID, targetStageID, actorID string, expectedVersion int64) (*pipeline.Application, error)
	SetSubStatus(ctx context.Context, applicationID string, subStatus pipeline.SubStatus, expectedVersion int64) (*pipeline.Application, error)
	StageCounts(ctx context.Context, workflowID string) (map[string]int, error)
}

// PipelineService exposes pipeline operations returning API DTOs. It is the
// one layer the HTTP server and CLI both talk to.
type PipelineService struct {
	store    PipelineStore
	pageSize int
	now      func() time.Time
}

// NewPipelineService constructs a PipelineService around the provided store.
func NewPipelineService(store PipelineStore, pageSize int) *PipelineService {
	if store == nil {
		return nil
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PipelineService{store: store, pageSize: pageSize, now: time.Now}
}

// Workflows lists every workflow.
func (s *PipelineService) Workflows(ctx context.Context) (WorkflowListResponse, error) {
	records, err := s.store.ListWorkflows(ctx)
	if err != nil {
		return WorkflowListResponse{}, err
	}
	out := make([]Workflow, 0, len(records))
	for _, wf := range records {
		out = append(out, FromWorkflow(wf))
	}
	return WorkflowListResponse{Workflows: out}, nil
}

// Workflow fetches one workflow with its ordered stages.
func (s *PipelineService) Workflow(ctx context.Context, id string) (Workflow, error) {
	wf, err := s.store.GetWorkflow(ctx, id)
	if err != nil {
		return Workflow{}, err
	}
	stages, err := s.store.GetStages(ctx, id)
	if err != nil {
		return Workflow{}, err
	}
	dto := FromWorkflow(wf)
	dto.Stages = FromStages(stages)
	return dto, nil
}

// CreateWorkflow creates a workflow, optionally seeded with the standard
// hiring stages.
func (s *PipelineService) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (Workflow, error) {
	var (
		wf  *pipeline.Workflow
		err error
	)
	if req.Seed {
		wf, err = s.store.SeedDefaultWorkflow(ctx, req.Name)
	} else {
		wf, err = s.store.CreateWorkflow(ctx, req.Name)
	}
	if err != nil {
		return Workflow{}, err
	}
	return s.Workflow(ctx, wf.ID)
}

// DeleteWorkflow removes an unused workflow.
func (s *PipelineService) DeleteWorkflow(ctx context.Context, id string) error {
	return s.store.DeleteWorkflow(ctx, id)
}

// AddStage appends a stage to a workflow.
func (s *PipelineService) AddStage(ctx context.Context, workflowID string, req AddStageRequest) (Stage, error) {
	stageType, ok := pipeline.ParseStageType(req.Type)
	if !ok {
		return Stage{}, pipeline.Wrap("add stage", pipeline.ErrInvalidStageType)
	}
	stage, err := s.store.AddStage(ctx, workflowID, req.Name, stageType, req.DueDays)
	if err != nil {
		return Stage{}, err
	}
	return FromStage(stage), nil
}

// Stages returns a workflow's stages in pipeline order.
func (s *PipelineService) Stages(ctx context.Context, workflowID string) (StageListResponse, error) {
	stages, err := s.store.GetStages(ctx, workflowID)
	if err != nil {
		return StageListResponse{}, err
	}
	occupancy, err := s.store.StageCounts(ctx, workflowID)
	if err != nil {
		return StageListResponse{}, err
	}
	return StageListResponse{Stages: FromStages(stages), ApplicationCounts: occupancy}, nil
}

// ReorderStages applies a full permutation of a workflow's stages.
func (s *PipelineService) ReorderStages(ctx context.Context, workflowID string, req ReorderStagesRequest) (StageListResponse, error) {
	stages, err := s.store.ReorderStages(ctx, workflowID, req.StageIDs)
	if err != nil {
		return StageListResponse{}, err
	}
	return StageListResponse{Stages: FromStages(stages)}, nil
}

// RemoveStage deletes a stage, migrating occupants when a target is given.
func (s *PipelineService) RemoveStage(ctx context.Context, workflowID, stageID string, req RemoveStageRequest) error {
	return s.store.RemoveStage(ctx, workflowID, stageID, req.MigrateTo)
}

// CreateApplication adds a candidate to a workflow's pipeline.
func (s *PipelineService) CreateApplication(ctx context.Context, req CreateApplicationRequest) (Application, error) {
	app, err := s.store.CreateApplication(ctx, pipeline.NewApplication{
		CandidateID:    req.CandidateID,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		JobID:          req.JobID,
		LocationID:     req.LocationID,
		DepartmentID:   req.DepartmentID,
		WorkflowID:     req.WorkflowID,
		ActorID:        req.ActorID,
	})
	if err != nil {
		return Application{}, err
	}
	return FromApplication(app), nil
}

// Application fetches a single application.
func (s *PipelineService) Application(ctx context.Context, id string) (Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	return FromApplication(app), nil
}

// History returns an application's transition sequence.
func (s *PipelineService) History(ctx context.Context, applicationID string) (HistoryResponse, error) {
	transitions, err := s.store.History(ctx, applicationID)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{Transitions: FromTransitions(transitions)}, nil
}

// MoveApplication executes a stage move under optimistic concurrency.
func (s *PipelineService) MoveApplication(ctx context.Context, applicationID string, req MoveApplicationRequest) (Application, error) {
	app, err := s.store.MoveApplication(ctx, applicationID, req.TargetStageID, req.ActorID, req.ExpectedVersion)
	if err != nil {
		return Application{}, err
	}
	return FromApplication(app), nil
}

// SetSubStatus writes the scheduling signal on an application.
func (s *PipelineService) SetSubStatus(ctx context.Context, applicationID string, req SubStatusRequest) (Application, error) {
	subStatus, ok := pipeline.ParseSubStatus(req.SubStatus)
	if !ok {
		return Application{}, pipeline.Wrap("set substatus", pipeline.ErrInvalidSubStatus)
	}
	app, err := s.store.SetSubStatus(ctx, applicationID, subStatus, req.ExpectedVersion)
	if err != nil {
		return Application{}, err
	}
	return FromApplication(app), nil
}

// projector snapshots a workflow's stages and applications.
func (s *PipelineService) projector(ctx context.Context, workflowID string) (*views.Projector, error) {
	stages, err := s.store.GetStages(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	apps, err := s.store.ApplicationsByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return views.New(stages, apps, s.pageSize, s.now()), nil
}

// List renders the flat list projection for a workflow.
func (s *PipelineService) List(ctx context.Context, workflowID string, query views.Query) (ListResponse, error) {
	p, err := s.projector(ctx, workflowID)
	if err != nil {
		return ListResponse{}, err
	}
	page := p.List(query)
	return ListResponse{
		Items:      FromViewItems(page.Items),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Counts:     FromCounts(p.Counts()),
	}, nil
}

// Board renders the Kanban projection for a workflow.
func (s *PipelineService) Board(ctx context.Context, workflowID string, query views.Query) (BoardResponse, error) {
	p, err := s.projector(ctx, workflowID)
	if err != nil {
		return BoardResponse{}, err
	}
	columns := p.Board(query)
	out := make([]BoardColumn, 0, len(columns))
	for _, column := range columns {
		out = append(out, BoardColumn{
			Stage: FromStage(column.Stage),
			Cards: FromViewItems(column.Cards),
		})
	}
	return BoardResponse{Columns: out, Counts: FromCounts(p.Counts())}, nil
}

// Table renders the pipeline-table projection for a workflow.
func (s *PipelineService) Table(ctx context.Context, workflowID string, query views.Query) (TableResponse, error) {
	p, err := s.projector(ctx, workflowID)
	if err != nil {
		return TableResponse{}, err
	}
	return TableResponse{
		Rows:              FromViewItems(p.Table(query)),
		DisqualifyStageID: p.DisqualifyStageID(),
		Counts:            FromCounts(p.Counts()),
	}, nil
}

// Counts renders the unfiltered sidebar totals for a workflow.
func (s *PipelineService) Counts(ctx context.Context, workflowID string) (CountsResponse, error) {
	p, err := s.projector(ctx, workflowID)
	if err != nil {
		return CountsResponse{}, err
	}
	return FromCounts(p.Counts()), nil
}
