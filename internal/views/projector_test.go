package views_test

import (
	"testing"
	"time"

	"hireflow/internal/pipeline"
	"hireflow/internal/views"
)

var snapshotNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func fixtureStages() []*pipeline.Stage {
	return []*pipeline.Stage{
		{ID: "st-lead", WorkflowID: "wf-1", Name: "Leads", Type: pipeline.StageTypeLead, Order: 0, DueDays: 3},
		{ID: "st-applied", WorkflowID: "wf-1", Name: "Applicants", Type: pipeline.StageTypeApplied, Order: 1, DueDays: 3},
		{ID: "st-interview", WorkflowID: "wf-1", Name: "Interview", Type: pipeline.StageTypeInterview, Order: 2, DueDays: 14},
		{ID: "st-hired", WorkflowID: "wf-1", Name: "Hired", Type: pipeline.StageTypeHired, Order: 3},
		{ID: "st-dq", WorkflowID: "wf-1", Name: "Disqualified", Type: pipeline.StageTypeDisqualified, Order: 4},
	}
}

func fixtureApplications() []*pipeline.Application {
	base := snapshotNow.Add(-10 * 24 * time.Hour)
	mk := func(id, name, email, job, location, dept, stageID string, enteredDaysAgo int, updatedOffset time.Duration) *pipeline.Application {
		return &pipeline.Application{
			ID:             id,
			CandidateID:    "cand-" + id,
			CandidateName:  name,
			CandidateEmail: email,
			JobID:          job,
			LocationID:     location,
			DepartmentID:   dept,
			WorkflowID:     "wf-1",
			CurrentStageID: stageID,
			EnteredStageAt: snapshotNow.Add(-time.Duration(enteredDaysAgo) * 24 * time.Hour),
			CreatedAt:      base,
			UpdatedAt:      base.Add(updatedOffset),
		}
	}
	return []*pipeline.Application{
		mk("app-1", "José García", "jose@example.com", "job-eng", "loc-ber", "dept-eng", "st-lead", 1, time.Hour),
		mk("app-2", "Mary Poppins", "mary@example.com", "job-eng", "loc-ber", "dept-eng", "st-applied", 5, 2*time.Hour),
		mk("app-3", "Ada Lovelace", "ada@example.com", "job-sales", "loc-nyc", "dept-sales", "st-interview", 20, 3*time.Hour),
		mk("app-4", "Grace Hopper", "grace@example.com", "job-eng", "loc-nyc", "dept-eng", "st-interview", 2, 4*time.Hour),
		mk("app-5", "Alan Kay", "alan@example.com", "job-sales", "loc-ber", "dept-sales", "st-hired", 30, 5*time.Hour),
		mk("app-6", "Barbara Liskov", "barbara@example.com", "job-eng", "loc-nyc", "dept-eng", "st-dq", 8, 6*time.Hour),
	}
}

func newProjector(t *testing.T, pageSize int) *views.Projector {
	t.Helper()
	return views.New(fixtureStages(), fixtureApplications(), pageSize, snapshotNow)
}

func TestCountsIgnoreFilters(t *testing.T) {
	p := newProjector(t, 20)
	counts := p.Counts()

	if counts.Total != 6 {
		t.Fatalf("total = %d, want 6", counts.Total)
	}
	want := map[views.Phase]int{
		views.PhaseLeads:        1,
		views.PhaseApplicants:   1,
		views.PhaseInProgress:   2,
		views.PhaseHired:        1,
		views.PhaseDisqualified: 1,
	}
	for phase, expected := range want {
		if counts.Phases[phase] != expected {
			t.Fatalf("phase %s = %d, want %d", phase, counts.Phases[phase], expected)
		}
	}
	if counts.Jobs["job-eng"] != 4 || counts.Jobs["job-sales"] != 2 {
		t.Fatalf("unexpected job counts %+v", counts.Jobs)
	}

	// Counts always describe the whole snapshot; a projector has no filter
	// state to leak into them, so a second call after heavy list filtering
	// must agree with the first.
	p.List(views.Query{Phases: []views.Phase{views.PhaseHired}, JobIDs: []string{"job-sales"}})
	again := p.Counts()
	if again.Total != counts.Total || again.Phases[views.PhaseInProgress] != counts.Phases[views.PhaseInProgress] {
		t.Fatalf("counts changed after filtering: %+v vs %+v", again, counts)
	}
}

func TestBoardColumnsSumToTotal(t *testing.T) {
	p := newProjector(t, 20)
	columns := p.Board(views.Query{})

	if len(columns) != 5 {
		t.Fatalf("columns = %d, want one per stage", len(columns))
	}
	sum := 0
	for _, column := range columns {
		sum += len(column.Cards)
	}
	if sum != p.Counts().Total {
		t.Fatalf("card sum %d != total %d", sum, p.Counts().Total)
	}
	if columns[0].Stage.ID != "st-lead" || columns[4].Stage.ID != "st-dq" {
		t.Fatalf("columns not in stage order: %s .. %s", columns[0].Stage.ID, columns[4].Stage.ID)
	}
}

func TestFacetsANDAcrossORWithin(t *testing.T) {
	p := newProjector(t, 20)

	cases := []struct {
		name  string
		query views.Query
		want  []string
	}{
		{
			name:  "no filters pass everything",
			query: views.Query{Sort: views.SortCandidateName, Dir: views.SortAsc},
			want:  []string{"app-3", "app-5", "app-6", "app-4", "app-1", "app-2"},
		},
		{
			name:  "or within phases",
			query: views.Query{Phases: []views.Phase{views.PhaseHired, views.PhaseDisqualified}, Sort: views.SortCandidateName, Dir: views.SortAsc},
			want:  []string{"app-5", "app-6"},
		},
		{
			name:  "and across categories",
			query: views.Query{Phases: []views.Phase{views.PhaseInProgress}, JobIDs: []string{"job-eng"}, Sort: views.SortCandidateName, Dir: views.SortAsc},
			want:  []string{"app-4"},
		},
		{
			name:  "location and department combine",
			query: views.Query{LocationIDs: []string{"loc-nyc"}, DepartmentIDs: []string{"dept-eng"}, Sort: views.SortCandidateName, Dir: views.SortAsc},
			want:  []string{"app-6", "app-4"},
		},
		{
			name:  "text matches email",
			query: views.Query{Text: "mary@"},
			want:  []string{"app-2"},
		},
		{
			name:  "text folding strips diacritics",
			query: views.Query{Text: "jose gar"},
			want:  []string{"app-1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := p.List(tc.query)
			got := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				got = append(got, item.Application.ID)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ids = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestListDefaultsToUpdatedAtDescending(t *testing.T) {
	p := newProjector(t, 20)
	page := p.List(views.Query{})

	if len(page.Items) != 6 {
		t.Fatalf("items = %d, want 6", len(page.Items))
	}
	if page.Items[0].Application.ID != "app-6" || page.Items[5].Application.ID != "app-1" {
		t.Fatalf("unexpected order: first=%s last=%s", page.Items[0].Application.ID, page.Items[5].Application.ID)
	}
}

func TestListPaginationClamps(t *testing.T) {
	p := newProjector(t, 4)

	first := p.List(views.Query{Page: 1})
	if first.TotalPages != 2 || len(first.Items) != 4 || first.Total != 6 {
		t.Fatalf("first page: pages=%d items=%d total=%d", first.TotalPages, len(first.Items), first.Total)
	}
	second := p.List(views.Query{Page: 2})
	if len(second.Items) != 2 {
		t.Fatalf("second page items = %d, want 2", len(second.Items))
	}
	beyond := p.List(views.Query{Page: 99})
	if beyond.Page != 2 || len(beyond.Items) != 2 {
		t.Fatalf("out-of-range page should clamp, got page=%d items=%d", beyond.Page, len(beyond.Items))
	}
}

func TestTableRestrictsToStage(t *testing.T) {
	p := newProjector(t, 20)

	rows := p.Table(views.Query{StageID: "st-interview"})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Application.CurrentStageID != "st-interview" {
			t.Fatalf("row on stage %s, want st-interview", row.Application.CurrentStageID)
		}
	}

	all := p.Table(views.Query{StageID: "all"})
	if len(all) != 6 {
		t.Fatalf("all rows = %d, want 6", len(all))
	}

	if got := p.DisqualifyStageID(); got != "st-dq" {
		t.Fatalf("DisqualifyStageID = %q, want st-dq", got)
	}
}

func TestItemsCarrySLAStatus(t *testing.T) {
	p := newProjector(t, 20)
	rows := p.Table(views.Query{StageID: "st-interview"})

	byID := make(map[string]views.Item, len(rows))
	for _, row := range rows {
		byID[row.Application.ID] = row
	}
	overdue, ok := byID["app-3"]
	if !ok {
		t.Fatal("missing app-3")
	}
	if !overdue.Breached || overdue.DaysInStage != 20 {
		t.Fatalf("app-3 breached=%v days=%d, want breached after 20 days", overdue.Breached, overdue.DaysInStage)
	}
	fresh := byID["app-4"]
	if fresh.Breached || !fresh.HasDeadline {
		t.Fatalf("app-4 breached=%v hasDeadline=%v, want within SLA with a deadline", fresh.Breached, fresh.HasDeadline)
	}

	hired := p.Table(views.Query{StageID: "st-hired"})
	if len(hired) != 1 || hired[0].Breached || hired[0].HasDeadline {
		t.Fatalf("hired stage has no dueDays and must never breach: %+v", hired)
	}
}

func TestParsePhase(t *testing.T) {
	if phase, ok := views.ParsePhase(" inprogress "); !ok || phase != views.PhaseInProgress {
		t.Fatalf("ParsePhase = %q, %v", phase, ok)
	}
	if _, ok := views.ParsePhase("offer"); ok {
		t.Fatal("offer is not a sidebar bucket")
	}
}
