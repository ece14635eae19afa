package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/schnell18/titra/internal/services"
)

const dateLayout = "2006-01-02"

// timeEntryRequest is the wire shape of a time entry creation. The date is
// a calendar day string.
type timeEntryRequest struct {
	ProjectID    string                 `json:"projectId"`
	Task         string                 `json:"task"`
	Date         string                 `json:"date"`
	Hours        float64                `json:"hours"`
	CustomFields map[string]interface{} `json:"customfields,omitempty"`
}

func (s *Server) handleCreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req timeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), nil)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid date: %v", err), nil)
		return
	}

	card, err := s.timecards.Insert(r.Context(), callerFrom(r), services.TimecardInput{
		ProjectID:    req.ProjectID,
		Task:         req.Task,
		Date:         date,
		Hours:        req.Hours,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "time entry created", card)
}

func (s *Server) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, r.PathValue("date"))
	if err != nil {
		writeResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid date: %v", err), nil)
		return
	}

	cards, err := s.timecards.ListForDate(r.Context(), callerFrom(r), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "time entries", cards)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListForUser(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "projects", projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input services.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), nil)
		return
	}

	project, err := s.projects.Create(r.Context(), callerFrom(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "project created", project)
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	status, err := s.users.StartTimer(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "timer started", status)
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	status, err := s.users.GetTimer(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "timer running", status)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	status, err := s.users.StopTimer(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "timer stopped", status)
}

func (s *Server) handleFixTimecards(w http.ResponseWriter, r *http.Request) {
	report, err := s.timecards.FixCardReferences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "timecards fixed", report)
}
