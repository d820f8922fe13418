package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"log/slog"

	"hireflow/internal/api"
	"hireflow/internal/logging"
	"hireflow/internal/pipeline"
)

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/workflows", s.handleListWorkflows)
	mux.HandleFunc("POST /api/v1/workflows", s.handleCreateWorkflow)
	mux.HandleFunc("GET /api/v1/workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("DELETE /api/v1/workflows/{id}", s.handleDeleteWorkflow)
	mux.HandleFunc("GET /api/v1/workflows/{id}/stages", s.handleListStages)
	mux.HandleFunc("POST /api/v1/workflows/{id}/stages", s.handleAddStage)
	mux.HandleFunc("PUT /api/v1/workflows/{id}/stages/order", s.handleReorderStages)
	mux.HandleFunc("DELETE /api/v1/workflows/{id}/stages/{stageID}", s.handleRemoveStage)
	mux.HandleFunc("GET /api/v1/workflows/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/v1/workflows/{id}/counts", s.handleCounts)
	mux.HandleFunc("POST /api/v1/applications", s.handleCreateApplication)
	mux.HandleFunc("GET /api/v1/applications/{id}", s.handleGetApplication)
	mux.HandleFunc("GET /api/v1/applications/{id}/history", s.handleHistory)
	mux.HandleFunc("POST /api/v1/applications/{id}/move", s.handleMoveApplication)
	mux.HandleFunc("POST /api/v1/applications/{id}/substatus", s.handleSetSubStatus)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded", Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Workflows(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req api.CreateWorkflowRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.CreateWorkflow(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Workflow(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteWorkflow(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Stages(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	var req api.AddStageRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.AddStage(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleReorderStages(w http.ResponseWriter, r *http.Request) {
	var req api.ReorderStagesRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.ReorderStages(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRemoveStage(w http.ResponseWriter, r *http.Request) {
	req := api.RemoveStageRequest{MigrateTo: r.URL.Query().Get("migrateTo")}
	err := s.service.RemoveStage(r.Context(), r.PathValue("id"), r.PathValue("stageID"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	query, err := api.ViewQueryFromValues(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	workflowID := r.PathValue("id")

	switch mode := r.URL.Query().Get("view"); mode {
	case "", "list":
		payload, err := s.service.List(r.Context(), workflowID, query)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, payload)
	case "board":
		payload, err := s.service.Board(r.Context(), workflowID, query)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, payload)
	case "table":
		payload, err := s.service.Table(r.Context(), workflowID, query)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, payload)
	default:
		s.writeError(w, fmt.Errorf("%w: unknown view %q", pipeline.ErrValidation, mode))
	}
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Counts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req api.CreateApplicationRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.CreateApplication(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Application(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleMoveApplication(w http.ResponseWriter, r *http.Request) {
	var req api.MoveApplicationRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.MoveApplication(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSetSubStatus(w http.ResponseWriter, r *http.Request) {
	var req api.SubStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	payload, err := s.service.SetSubStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed request body", pipeline.ErrValidation))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps store sentinels onto the HTTP contract: missing records
// are 404, lost CAS races and occupancy refusals are 409, semantically
// impossible requests are 422, and malformed input is 400.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case pipeline.IsNotFound(err):
		status = http.StatusNotFound
	case pipeline.IsConflict(err):
		status = http.StatusConflict
	case errors.Is(err, pipeline.ErrValidation):
		status = http.StatusBadRequest
	case pipeline.IsInvalid(err):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log().Error("request failed", logging.Error(err))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Code: pipeline.Code(err)})
}
