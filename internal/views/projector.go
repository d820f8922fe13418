package views

import (
	"sort"
	"strings"
	"time"

	"hireflow/internal/pipeline"
	"hireflow/internal/sla"
)

// SortField selects the single column a list projection is ordered by.
type SortField string

const (
	SortUpdatedAt      SortField = "updatedAt"
	SortCandidateName  SortField = "name"
	SortEnteredStageAt SortField = "enteredStageAt"
)

// SortDir toggles the list ordering.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortField converts a string into a known SortField.
func ParseSortField(value string) (SortField, bool) {
	switch strings.TrimSpace(value) {
	case "", string(SortUpdatedAt):
		return SortUpdatedAt, true
	case string(SortCandidateName):
		return SortCandidateName, true
	case string(SortEnteredStageAt):
		return SortEnteredStageAt, true
	default:
		return "", false
	}
}

// ParseSortDir converts a string into a known SortDir.
func ParseSortDir(value string) (SortDir, bool) {
	switch strings.TrimSpace(value) {
	case "", string(SortDesc):
		return SortDesc, true
	case string(SortAsc):
		return SortAsc, true
	default:
		return "", false
	}
}

// Query carries every filter, sort, and pagination knob a projection accepts.
// Facets are ANDed across categories and ORed within one; an empty category
// imposes no constraint.
type Query struct {
	Text          string
	Phases        []Phase
	JobIDs        []string
	LocationIDs   []string
	DepartmentIDs []string
	Sort          SortField
	Dir           SortDir
	Page          int
	StageID       string
}

// Item is one application annotated with everything a presentation needs:
// its current stage, sidebar bucket, and due-date status as of the
// projector's snapshot time.
type Item struct {
	Application *pipeline.Application
	Stage       *pipeline.Stage
	Phase       Phase
	DaysInStage int
	Breached    bool
	Deadline    time.Time
	HasDeadline bool
}

// ListPage is a sorted, paginated slice of the filtered set.
type ListPage struct {
	Items      []Item
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// Column is one Kanban lane: a stage and the filtered cards currently on it.
type Column struct {
	Stage *pipeline.Stage
	Cards []Item
}

// Projector turns one snapshot of a workflow's stages and applications into
// the list, board, and table presentations. All three share the same
// filter pipeline; only the final shaping differs. A Projector is a
// read-only view over the snapshot it was built from and is safe for
// concurrent use.
type Projector struct {
	stages    []*pipeline.Stage
	stageByID map[string]*pipeline.Stage
	apps      []*pipeline.Application
	pageSize  int
	now       time.Time
}

// New builds a projector over an ordered stage list and the applications on
// those stages. The snapshot time fixes every SLA computation the projector
// emits.
func New(stages []*pipeline.Stage, apps []*pipeline.Application, pageSize int, now time.Time) *Projector {
	if pageSize <= 0 {
		pageSize = 20
	}
	byID := make(map[string]*pipeline.Stage, len(stages))
	for _, stage := range stages {
		byID[stage.ID] = stage
	}
	return &Projector{
		stages:    stages,
		stageByID: byID,
		apps:      apps,
		pageSize:  pageSize,
		now:       now,
	}
}

// Counts aggregates the whole snapshot, ignoring any active filters.
func (p *Projector) Counts() Counts {
	counts := Counts{
		Total:       len(p.apps),
		Phases:      make(map[Phase]int, len(allPhases)),
		Jobs:        make(map[string]int),
		Locations:   make(map[string]int),
		Departments: make(map[string]int),
	}
	for _, phase := range allPhases {
		counts.Phases[phase] = 0
	}
	for _, app := range p.apps {
		if stage, ok := p.stageByID[app.CurrentStageID]; ok {
			if phase, ok := PhaseForStageType(stage.Type); ok {
				counts.Phases[phase]++
			}
		}
		if app.JobID != "" {
			counts.Jobs[app.JobID]++
		}
		if app.LocationID != "" {
			counts.Locations[app.LocationID]++
		}
		if app.DepartmentID != "" {
			counts.Departments[app.DepartmentID]++
		}
	}
	return counts
}

// List returns the filtered set sorted and cut to the requested page. Pages
// are one-based; out-of-range pages clamp rather than error.
func (p *Projector) List(query Query) ListPage {
	items := p.filtered(query)
	p.sortItems(items, query)

	total := len(items)
	totalPages := (total + p.pageSize - 1) / p.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return ListPage{
		Items:      items[start:end],
		Page:       page,
		PageSize:   p.pageSize,
		TotalPages: totalPages,
		Total:      total,
	}
}

// Board groups the filtered set into one column per workflow stage, in stage
// order. Every stage gets a column even when no card survives the filters.
func (p *Projector) Board(query Query) []Column {
	items := p.filtered(query)
	p.sortItems(items, query)

	byStage := make(map[string][]Item, len(p.stages))
	for _, item := range items {
		byStage[item.Application.CurrentStageID] = append(byStage[item.Application.CurrentStageID], item)
	}
	columns := make([]Column, 0, len(p.stages))
	for _, stage := range p.stages {
		columns = append(columns, Column{Stage: stage, Cards: byStage[stage.ID]})
	}
	return columns
}

// Table returns the filtered set as flat rows, optionally restricted to one
// stage. An empty or "all" StageID keeps every stage.
func (p *Projector) Table(query Query) []Item {
	items := p.filtered(query)
	if query.StageID != "" && query.StageID != "all" {
		kept := items[:0]
		for _, item := range items {
			if item.Application.CurrentStageID == query.StageID {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	p.sortItems(items, query)
	return items
}

// DisqualifyStageID returns the id of the workflow's first disqualified-typed
// stage, or empty when the workflow has none. Table rows use it as the target
// of the one-click disqualify action.
func (p *Projector) DisqualifyStageID() string {
	for _, stage := range p.stages {
		if stage.Type == pipeline.StageTypeDisqualified {
			return stage.ID
		}
	}
	return ""
}

func (p *Projector) filtered(query Query) []Item {
	items := make([]Item, 0, len(p.apps))
	for _, app := range p.apps {
		stage := p.stageByID[app.CurrentStageID]
		phase := Phase("")
		if stage != nil {
			if bucket, ok := PhaseForStageType(stage.Type); ok {
				phase = bucket
			}
		}
		if !matchesText(app, query.Text) {
			continue
		}
		if !phaseSelected(query.Phases, phase) {
			continue
		}
		if !valueSelected(query.JobIDs, app.JobID) {
			continue
		}
		if !valueSelected(query.LocationIDs, app.LocationID) {
			continue
		}
		if !valueSelected(query.DepartmentIDs, app.DepartmentID) {
			continue
		}
		item := Item{
			Application: app,
			Stage:       stage,
			Phase:       phase,
			DaysInStage: sla.DaysInStage(app, p.now),
			Breached:    sla.Breached(app, stage, p.now),
		}
		if deadline, ok := sla.Deadline(app, stage); ok {
			item.Deadline = deadline
			item.HasDeadline = true
		}
		items = append(items, item)
	}
	return items
}

func matchesText(app *pipeline.Application, text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return containsFolded(app.CandidateName, text) || containsFolded(app.CandidateEmail, text)
}

func phaseSelected(selected []Phase, phase Phase) bool {
	if len(selected) == 0 {
		return true
	}
	for _, candidate := range selected {
		if candidate == phase {
			return true
		}
	}
	return false
}

func valueSelected(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, candidate := range selected {
		if candidate == value {
			return true
		}
	}
	return false
}

func (p *Projector) sortItems(items []Item, query Query) {
	field := query.Sort
	if field == "" {
		field = SortUpdatedAt
	}
	dir := query.Dir
	if dir == "" {
		dir = SortDesc
	}
	compare := func(a, b *pipeline.Application) int {
		switch field {
		case SortCandidateName:
			if c := strings.Compare(foldText(a.CandidateName), foldText(b.CandidateName)); c != 0 {
				return c
			}
		case SortEnteredStageAt:
			if c := a.EnteredStageAt.Compare(b.EnteredStageAt); c != 0 {
				return c
			}
		default:
			if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
				return c
			}
		}
		// Tie-break on id so pagination stays stable across requests.
		return strings.Compare(a.ID, b.ID)
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i].Application, items[j].Application)
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
}
