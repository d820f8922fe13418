package views

import (
	"strings"

	"hireflow/internal/pipeline"
)

// Phase is a hiring-phase bucket shown in the filter sidebar. Buckets group
// stage types, not stages, so they stay stable across differently-shaped
// workflows.
type Phase string

const (
	PhaseLeads        Phase = "leads"
	PhaseApplicants   Phase = "applicants"
	PhaseInProgress   Phase = "inProgress"
	PhaseHired        Phase = "hired"
	PhaseDisqualified Phase = "disqualified"
)

var allPhases = []Phase{
	PhaseLeads,
	PhaseApplicants,
	PhaseInProgress,
	PhaseHired,
	PhaseDisqualified,
}

// AllPhases returns the ordered list of sidebar buckets.
func AllPhases() []Phase {
	cp := make([]Phase, len(allPhases))
	copy(cp, allPhases)
	return cp
}

// ParsePhase converts a string into a known Phase.
func ParsePhase(value string) (Phase, bool) {
	trimmed := strings.TrimSpace(value)
	for _, phase := range allPhases {
		if strings.EqualFold(trimmed, string(phase)) {
			return phase, true
		}
	}
	return "", false
}

// PhaseForStageType maps a stage type to its sidebar bucket. Offer, archived,
// and untyped stages belong to no bucket and only surface when no phase
// filter is active.
func PhaseForStageType(t pipeline.StageType) (Phase, bool) {
	switch t {
	case pipeline.StageTypeLead:
		return PhaseLeads, true
	case pipeline.StageTypeApplied:
		return PhaseApplicants, true
	case pipeline.StageTypeReview, pipeline.StageTypeInterview:
		return PhaseInProgress, true
	case pipeline.StageTypeHired:
		return PhaseHired, true
	case pipeline.StageTypeDisqualified:
		return PhaseDisqualified, true
	default:
		return "", false
	}
}

// Counts aggregates the unfiltered application set for the sidebar. The
// totals deliberately ignore whatever filters are active; the sidebar shows
// what exists, not what is currently displayed.
type Counts struct {
	Total       int            `json:"total"`
	Phases      map[Phase]int  `json:"phases"`
	Jobs        map[string]int `json:"jobs"`
	Locations   map[string]int `json:"locations"`
	Departments map[string]int `json:"departments"`
}
