package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/schnell18/titra/internal/reporting"
	"github.com/schnell18/titra/internal/services"
)

// reportRequestFromQuery reads the shared report query parameters. Projects
// and users are comma-separated id lists accepting the "all" sentinel;
// start and end bound a custom period.
func reportRequestFromQuery(r *http.Request) (services.ReportRequest, error) {
	q := r.URL.Query()

	req := services.ReportRequest{
		ProjectIDs: splitList(q.Get("projects")),
		UserIDs:    splitList(q.Get("users")),
		Period:     reporting.Period(q.Get("period")),
		Customer:   q.Get("customer"),
	}
	if req.Period == "" {
		req.Period = reporting.PeriodAll
	}
	if limit := q.Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			return services.ReportRequest{}, err
		}
		req.Limit = parsed
	}
	if page := q.Get("page"); page != "" {
		parsed, err := strconv.Atoi(page)
		if err != nil {
			return services.ReportRequest{}, err
		}
		req.Page = parsed
	}

	if start, end := q.Get("start"), q.Get("end"); start != "" || end != "" {
		dates := &reporting.DateRange{}
		if start != "" {
			parsed, err := time.Parse(dateLayout, start)
			if err != nil {
				return services.ReportRequest{}, err
			}
			dates.Start = parsed
		}
		if end != "" {
			parsed, err := time.Parse(dateLayout, end)
			if err != nil {
				return services.ReportRequest{}, err
			}
			dates.End = parsed
		}
		req.Dates = dates
	}
	return req, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Server) handleDailyHours(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequestFromQuery(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, "invalid report parameters: "+err.Error(), nil)
		return
	}

	result, err := s.reports.GetDailyHours(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "daily hours", result)
}

func (s *Server) handleTotalHours(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequestFromQuery(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, "invalid report parameters: "+err.Error(), nil)
		return
	}

	result, err := s.reports.GetTotalHoursForPeriod(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "total hours", result)
}

func (s *Server) handleWorkingHours(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequestFromQuery(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, "invalid report parameters: "+err.Error(), nil)
		return
	}

	result, err := s.reports.GetWorkingHoursForPeriod(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, "working hours", result)
}
