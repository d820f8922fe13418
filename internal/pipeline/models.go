package pipeline

import (
	"strings"
	"time"
)

// StageType classifies a stage within a hiring workflow.
type StageType string

const (
	StageTypeLead         StageType = "lead"
	StageTypeApplied      StageType = "applied"
	StageTypeReview       StageType = "review"
	StageTypeInterview    StageType = "interview"
	StageTypeOffer        StageType = "offer"
	StageTypeHired        StageType = "hired"
	StageTypeDisqualified StageType = "disqualified"
	StageTypeArchived     StageType = "archived"
	StageTypeNone         StageType = "none"
)

// SystemActor is recorded on synthetic transitions created by registry
// maintenance (stage removal migrations) rather than a recruiter action.
const SystemActor = "system"

var allStageTypes = []StageType{
	StageTypeLead,
	StageTypeApplied,
	StageTypeReview,
	StageTypeInterview,
	StageTypeOffer,
	StageTypeHired,
	StageTypeDisqualified,
	StageTypeArchived,
	StageTypeNone,
}

var stageTypeSet = func() map[StageType]struct{} {
	set := make(map[StageType]struct{}, len(allStageTypes))
	for _, st := range allStageTypes {
		set[st] = struct{}{}
	}
	return set
}()

var terminalStageTypes = map[StageType]struct{}{
	StageTypeHired:        {},
	StageTypeDisqualified: {},
	StageTypeArchived:     {},
}

// AllStageTypes returns the ordered list of known stage types.
func AllStageTypes() []StageType {
	cp := make([]StageType, len(allStageTypes))
	copy(cp, allStageTypes)
	return cp
}

// ParseStageType converts a string into a known StageType.
func ParseStageType(value string) (StageType, bool) {
	normalized := StageType(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageTypeSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether applications parked on a stage of this type have
// reached the end of the pipeline (hired, disqualified, archived).
func (t StageType) IsTerminal() bool {
	_, ok := terminalStageTypes[t]
	return ok
}

// SubStatus is the externally-set scheduling signal on an application. It is
// orthogonal to the stage and is cleared by every stage move.
type SubStatus string

const (
	SubStatusNone             SubStatus = ""
	SubStatusNeedsScheduling  SubStatus = "needs_scheduling"
	SubStatusWaitingFeedback  SubStatus = "waiting_on_feedback"
	SubStatusFeedbackReceived SubStatus = "feedback_received"
)

var subStatusSet = map[SubStatus]struct{}{
	SubStatusNone:             {},
	SubStatusNeedsScheduling:  {},
	SubStatusWaitingFeedback:  {},
	SubStatusFeedbackReceived: {},
}

// ParseSubStatus converts a string into a known SubStatus. The empty string
// parses to SubStatusNone.
func ParseSubStatus(value string) (SubStatus, bool) {
	normalized := SubStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := subStatusSet[normalized]
	return normalized, ok
}

// Workflow is a named, ordered stage sequence shared by one or more jobs.
type Workflow struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stage is one step of a workflow. Orders within a workflow are always the
// dense sequence 0..N-1.
type Stage struct {
	ID         string
	WorkflowID string
	Name       string
	Type       StageType
	Order      int
	DueDays    int // 0 means no SLA
}

// Application tracks one candidate's position in one job's workflow.
type Application struct {
	ID             string
	CandidateID    string
	CandidateName  string
	CandidateEmail string
	JobID          string
	LocationID     string
	DepartmentID   string
	WorkflowID     string
	CurrentStageID string
	EnteredStageAt time.Time
	SubStatus      SubStatus
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transition is an immutable stage-change record in an application's history.
// FromStageID is empty on the creation transition.
type Transition struct {
	ApplicationID string
	Seq           int64
	FromStageID   string
	ToStageID     string
	ActorID       string
	Timestamp     time.Time
}

// NewApplication carries the externally-owned identity fields for creation.
// Candidate, job, location, and department identifiers come from the
// collaborating services and are stored opaquely for faceting.
type NewApplication struct {
	CandidateID    string
	CandidateName  string
	CandidateEmail string
	JobID          string
	LocationID     string
	DepartmentID   string
	WorkflowID     string
	ActorID        string
}
