package services

import (
	"context"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/reporting"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// reportServiceImpl implements the ReportService interface
type reportServiceImpl struct {
	resolver *reporting.ScopeResolver
	executor *reporting.Executor
}

// NewReportService creates a new ReportService instance
func NewReportService(repo sqlite.Repository) ReportService {
	return &reportServiceImpl{
		resolver: reporting.NewScopeResolver(repo),
		executor: reporting.NewExecutor(repo),
	}
}

// scope resolves the request's project sentinel against the caller's
// visible projects and carries the rest of the request through unchanged.
func (s *reportServiceImpl) scope(ctx context.Context, caller domain.User, req ReportRequest) (reporting.Scope, error) {
	projectIDs, err := s.resolver.ResolveProjects(ctx, caller.ID, req.ProjectIDs)
	if err != nil {
		return reporting.Scope{}, err
	}
	return reporting.Scope{
		ProjectIDs: projectIDs,
		Period:     req.Period,
		Dates:      req.Dates,
		UserIDs:    req.UserIDs,
		Customer:   req.Customer,
		Limit:      req.Limit,
		Page:       req.Page,
	}, nil
}

// GetDailyHours returns per-day, per-user totals for the requested scope.
func (s *reportServiceImpl) GetDailyHours(ctx context.Context, caller domain.User, req ReportRequest) (*DailyHoursResult, error) {
	scope, err := s.scope(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	spec, err := reporting.BuildDailyHoursSelector(scope)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.executor.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &DailyHoursResult{DailyHours: rows, TotalEntries: total}, nil
}

// GetTotalHoursForPeriod returns per-project, per-user totals for the
// requested scope.
func (s *reportServiceImpl) GetTotalHoursForPeriod(ctx context.Context, caller domain.User, req ReportRequest) (*TotalHoursResult, error) {
	scope, err := s.scope(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	spec, err := reporting.BuildTotalHoursSelector(scope)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.executor.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &TotalHoursResult{TotalHours: rows, TotalEntries: total}, nil
}

// GetWorkingHoursForPeriod returns the per-user working-time comparison for
// the requested scope. Customer filtering does not apply here.
func (s *reportServiceImpl) GetWorkingHoursForPeriod(ctx context.Context, caller domain.User, req ReportRequest) (*WorkingHoursResult, error) {
	scope, err := s.scope(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	spec, err := reporting.BuildWorkingTimeSelector(scope)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.executor.ExecuteWorkingTime(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &WorkingHoursResult{WorkingHours: rows, TotalEntries: total}, nil
}
