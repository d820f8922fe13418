package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Workflow describes a workflow in a transport-friendly format.
type Workflow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
	Stages    []Stage `json:"stages,omitempty"`
}

// Stage describes one step of a workflow's pipeline.
type Stage struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Order      int    `json:"order"`
	DueDays    int    `json:"dueDays,omitempty"`
}

// Application describes a candidate's position in a pipeline.
type Application struct {
	ID             string `json:"id"`
	CandidateID    string `json:"candidateId"`
	CandidateName  string `json:"candidateName,omitempty"`
	CandidateEmail string `json:"candidateEmail,omitempty"`
	JobID          string `json:"jobId,omitempty"`
	LocationID     string `json:"locationId,omitempty"`
	DepartmentID   string `json:"departmentId,omitempty"`
	WorkflowID     string `json:"workflowId"`
	CurrentStageID string `json:"currentStageId"`
	EnteredStageAt string `json:"enteredStageAt,omitempty"`
	SubStatus      string `json:"subStatus,omitempty"`
	Version        int64  `json:"version"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// Transition is one immutable entry of an application's stage history.
type Transition struct {
	ApplicationID string `json:"applicationId"`
	Seq           int64  `json:"seq"`
	FromStageID   string `json:"fromStageId,omitempty"`
	ToStageID     string `json:"toStageId"`
	ActorID       string `json:"actorId"`
	Timestamp     string `json:"timestamp"`
}

// ViewItem is one application annotated for rendering: its stage, sidebar
// bucket, and due-date status.
type ViewItem struct {
	Application Application `json:"application"`
	StageName   string      `json:"stageName,omitempty"`
	StageType   string      `json:"stageType,omitempty"`
	Phase       string      `json:"phase,omitempty"`
	DaysInStage int         `json:"daysInStage"`
	Breached    bool        `json:"breached"`
	Deadline    string      `json:"deadline,omitempty"`
}

// ListResponse is a page of the filtered list projection. Counts always
// reflect the whole workflow so the sidebar and the page come from one
// snapshot.
type ListResponse struct {
	Items      []ViewItem     `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
	Counts     CountsResponse `json:"counts"`
}

// BoardColumn is one Kanban lane.
type BoardColumn struct {
	Stage Stage      `json:"stage"`
	Cards []ViewItem `json:"cards"`
}

// BoardResponse is the Kanban projection, one column per stage in order.
type BoardResponse struct {
	Columns []BoardColumn  `json:"columns"`
	Counts  CountsResponse `json:"counts"`
}

// TableResponse is the pipeline-table projection. DisqualifyStageID is the
// target of the per-row disqualify shorthand, empty when the workflow has no
// disqualified-typed stage.
type TableResponse struct {
	Rows              []ViewItem     `json:"rows"`
	DisqualifyStageID string         `json:"disqualifyStageId,omitempty"`
	Counts            CountsResponse `json:"counts"`
}

// CountsResponse carries the unfiltered sidebar totals.
type CountsResponse struct {
	Total       int            `json:"total"`
	Phases      map[string]int `json:"phases"`
	Jobs        map[string]int `json:"jobs"`
	Locations   map[string]int `json:"locations"`
	Departments map[string]int `json:"departments"`
}

// WorkflowListResponse wraps a collection of workflows.
type WorkflowListResponse struct {
	Workflows []Workflow `json:"workflows"`
}

// StageListResponse wraps a workflow's ordered stages. ApplicationCounts
// maps stage id to current occupancy.
type StageListResponse struct {
	Stages            []Stage        `json:"stages"`
	ApplicationCounts map[string]int `json:"applicationCounts,omitempty"`
}

// ApplicationResponse wraps a single application.
type ApplicationResponse struct {
	Application Application `json:"application"`
}

// HistoryResponse wraps an application's transition history.
type HistoryResponse struct {
	Transitions []Transition `json:"transitions"`
}

// CreateWorkflowRequest creates an empty workflow, or the standard seeded
// pipeline when Seed is set.
type CreateWorkflowRequest struct {
	Name string `json:"name"`
	Seed bool   `json:"seed,omitempty"`
}

// AddStageRequest appends a stage to a workflow.
type AddStageRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DueDays int    `json:"dueDays,omitempty"`
}

// ReorderStagesRequest carries the full permutation of a workflow's stage ids.
type ReorderStagesRequest struct {
	StageIDs []string `json:"stageIds"`
}

// RemoveStageRequest optionally names the stage occupants migrate to.
type RemoveStageRequest struct {
	MigrateTo string `json:"migrateTo,omitempty"`
}

// CreateApplicationRequest adds a candidate to a workflow's pipeline.
type CreateApplicationRequest struct {
	CandidateID    string `json:"candidateId"`
	CandidateName  string `json:"candidateName,omitempty"`
	CandidateEmail string `json:"candidateEmail,omitempty"`
	JobID          string `json:"jobId,omitempty"`
	LocationID     string `json:"locationId,omitempty"`
	DepartmentID   string `json:"departmentId,omitempty"`
	WorkflowID     string `json:"workflowId"`
	ActorID        string `json:"actorId,omitempty"`
}

// MoveApplicationRequest moves an application under optimistic concurrency.
type MoveApplicationRequest struct {
	TargetStageID   string `json:"targetStageId"`
	ActorID         string `json:"actorId"`
	ExpectedVersion int64  `json:"expectedVersion"`
}

// SubStatusRequest sets the scheduling signal on an application.
type SubStatusRequest struct {
	SubStatus       string `json:"subStatus"`
	ExpectedVersion int64  `json:"expectedVersion"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse reports liveness and database reachability.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
