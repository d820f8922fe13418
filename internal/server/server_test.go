package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hireflow/internal/api"
	"hireflow/internal/config"
	"hireflow/internal/logging"
	"hireflow/internal/pipeline"
	"hireflow/internal/server"
	"hireflow/internal/testsupport"
)

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *pipeline.Store, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	srv, err := server.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, cfg
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	var health api.HealthResponse
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/health", nil, &health)
	if resp.StatusCode != http.StatusOK || health.Status != "ok" {
		t.Fatalf("health: status = %d body = %+v", resp.StatusCode, health)
	}
}

func TestWorkflowLifecycle(t *testing.T) {
	ts, _, _ := newTestServer(t)

	var created api.Workflow
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/workflows", api.CreateWorkflowRequest{Name: "Hiring", Seed: true}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	if len(created.Stages) != 10 {
		t.Fatalf("stages = %d, want 10", len(created.Stages))
	}

	var fetched api.Workflow
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+created.ID, nil, &fetched)
	if resp.StatusCode != http.StatusOK || fetched.Name != "Hiring" {
		t.Fatalf("get status = %d name = %q", resp.StatusCode, fetched.Name)
	}

	var errBody api.ErrorResponse
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/no-such-id", nil, &errBody)
	if resp.StatusCode != http.StatusNotFound || errBody.Code != "workflow_not_found" {
		t.Fatalf("missing workflow: status = %d code = %q", resp.StatusCode, errBody.Code)
	}
}

func TestMoveConflictSurfacesAs409(t *testing.T) {
	ts, store, _ := newTestServer(t)

	wf, stages := testsupport.SeedWorkflow(t, store, "Hiring")
	app := testsupport.NewApplication(t, store, wf.ID, "cand-1", "Ada Lovelace")
	applicants := testsupport.StageNamed(t, stages, "Applicants")
	interview := testsupport.StageNamed(t, stages, "Interview")

	var moved api.Application
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/applications/"+app.ID+"/move", api.MoveApplicationRequest{
		TargetStageID:   applicants.ID,
		ActorID:         "recruiter-a",
		ExpectedVersion: app.Version,
	}, &moved)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first move status = %d", resp.StatusCode)
	}

	var errBody api.ErrorResponse
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/applications/"+app.ID+"/move", api.MoveApplicationRequest{
		TargetStageID:   interview.ID,
		ActorID:         "recruiter-b",
		ExpectedVersion: app.Version,
	}, &errBody)
	if resp.StatusCode != http.StatusConflict || errBody.Code != "stale_version" {
		t.Fatalf("stale move: status = %d code = %q", resp.StatusCode, errBody.Code)
	}
}

func TestMoveToForeignStageIs422(t *testing.T) {
	ts, store, _ := newTestServer(t)

	wf, _ := testsupport.SeedWorkflow(t, store, "Hiring")
	_, otherStages := testsupport.SeedWorkflow(t, store, "Other")
	app := testsupport.NewApplication(t, store, wf.ID, "cand-1", "Ada Lovelace")

	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/applications/"+app.ID+"/move", api.MoveApplicationRequest{
		TargetStageID:   otherStages[0].ID,
		ActorID:         "recruiter-1",
		ExpectedVersion: app.Version,
	}, &errBody)
	if resp.StatusCode != http.StatusUnprocessableEntity || errBody.Code != "workflow_mismatch" {
		t.Fatalf("foreign move: status = %d code = %q", resp.StatusCode, errBody.Code)
	}
}

func TestRemoveOccupiedStageRequiresMigrateTarget(t *testing.T) {
	ts, store, _ := newTestServer(t)

	wf, stages := testsupport.SeedWorkflow(t, store, "Hiring")
	testsupport.NewApplication(t, store, wf.ID, "cand-1", "Ada Lovelace")
	leads := testsupport.StageNamed(t, stages, "Leads")
	applicants := testsupport.StageNamed(t, stages, "Applicants")

	var errBody api.ErrorResponse
	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/v1/workflows/"+wf.ID+"/stages/"+leads.ID, nil, &errBody)
	if resp.StatusCode != http.StatusConflict || errBody.Code != "stage_has_active_candidates" {
		t.Fatalf("occupied removal: status = %d code = %q", resp.StatusCode, errBody.Code)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/workflows/"+wf.ID+"/stages/"+leads.ID+"?migrateTo="+applicants.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("migrating removal: status = %d", resp.StatusCode)
	}
}

func TestViewEndpointModes(t *testing.T) {
	ts, store, _ := newTestServer(t)

	wf, _ := testsupport.SeedWorkflow(t, store, "Hiring")
	testsupport.NewApplication(t, store, wf.ID, "cand-1", "Ada Lovelace")
	testsupport.NewApplication(t, store, wf.ID, "cand-2", "Grace Hopper")

	var list api.ListResponse
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+wf.ID+"/view", nil, &list)
	if resp.StatusCode != http.StatusOK || list.Total != 2 {
		t.Fatalf("list view: status = %d total = %d", resp.StatusCode, list.Total)
	}
	if list.Counts.Total != 2 {
		t.Fatalf("list counts total = %d, want 2", list.Counts.Total)
	}

	// Sidebar counts come from the same snapshot but ignore active filters.
	var filtered api.ListResponse
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+wf.ID+"/view?q=ada", nil, &filtered)
	if resp.StatusCode != http.StatusOK || filtered.Total != 1 {
		t.Fatalf("filtered list: status = %d total = %d", resp.StatusCode, filtered.Total)
	}
	if filtered.Counts.Total != 2 {
		t.Fatalf("filtered counts total = %d, want 2", filtered.Counts.Total)
	}

	var board api.BoardResponse
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+wf.ID+"/view?view=board", nil, &board)
	if resp.StatusCode != http.StatusOK || len(board.Columns) != 10 {
		t.Fatalf("board view: status = %d columns = %d", resp.StatusCode, len(board.Columns))
	}
	if board.Counts.Total != 2 {
		t.Fatalf("board counts total = %d, want 2", board.Counts.Total)
	}
	cards := 0
	for _, column := range board.Columns {
		cards += len(column.Cards)
	}
	if cards != 2 {
		t.Fatalf("board cards = %d, want 2", cards)
	}

	var errBody api.ErrorResponse
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+wf.ID+"/view?view=pie", nil, &errBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown view: status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/workflows/"+wf.ID+"/view?phase=offer", nil, &errBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown phase: status = %d", resp.StatusCode)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	ts, _, _ := newTestServer(t, testsupport.WithAPIToken("sesame"))

	resp, err := http.Get(ts.URL + "/api/v1/workflows")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/workflows", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sesame")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d", resp.StatusCode)
	}
}

func TestStartRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := server.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	if err := first.Start(t.Context()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := server.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	if err := second.Start(t.Context()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}
}
