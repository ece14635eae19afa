package gateway

import (
	"log/slog"
	"net/http"

	"github.com/schnell18/titra/internal/services"
)

// Server is the external REST gateway. All routes share the bearer-token
// auth, CORS and logging middleware and respond with the JSON envelope.
type Server struct {
	timecards services.TimecardService
	projects  services.ProjectService
	users     services.UserService
	reports   services.ReportService
	logger    *slog.Logger
	handler   http.Handler
}

// NewServer wires the route table and middleware chain.
func NewServer(timecards services.TimecardService, projects services.ProjectService, users services.UserService, reports services.ReportService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		timecards: timecards,
		projects:  projects,
		users:     users,
		reports:   reports,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /timeentry/create", s.handleCreateTimeEntry)
	mux.HandleFunc("GET /timeentry/list/{date}", s.handleListTimeEntries)
	mux.HandleFunc("GET /project/list", s.handleListProjects)
	mux.HandleFunc("POST /project/create", s.handleCreateProject)
	mux.HandleFunc("POST /timer/start", s.handleStartTimer)
	mux.HandleFunc("GET /timer/get", s.handleGetTimer)
	mux.HandleFunc("POST /timer/stop", s.handleStopTimer)
	mux.HandleFunc("GET /timecard/fix", s.handleFixTimecards)
	mux.HandleFunc("GET /report/dailyHours", s.handleDailyHours)
	mux.HandleFunc("GET /report/totalHours", s.handleTotalHours)
	mux.HandleFunc("GET /report/workingHours", s.handleWorkingHours)

	s.handler = corsMiddleware(loggingMiddleware(logger, authMiddleware(users, mux)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
