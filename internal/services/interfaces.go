package services

import (
	"context"
	"time"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/invoicing"
	"github.com/schnell18/titra/internal/reporting"
	"github.com/schnell18/titra/internal/wekan"
)

// TimecardInput carries the caller-supplied fields of a time entry. The
// task text may still contain emoji shorthand; services expand it before
// any key use.
type TimecardInput struct {
	ProjectID    string                 `json:"projectId"`
	Task         string                 `json:"task"`
	CardID       string                 `json:"cardId,omitempty"`
	Date         time.Time              `json:"date"`
	Hours        float64                `json:"hours"`
	CustomFields map[string]interface{} `json:"customfields,omitempty"`
}

// ProjectInput carries the caller-supplied fields of a new project.
type ProjectInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Customer    string  `json:"customer,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
}

// ReportRequest describes the scope of a report or invoicing run. Project
// and user dimensions accept the "all" sentinel.
type ReportRequest struct {
	ProjectIDs []string
	UserIDs    []string
	Period     reporting.Period
	Dates      *reporting.DateRange
	Customer   string
	Limit      int
	Page       int
}

// DailyHoursResult is the paged per-day totals report.
type DailyHoursResult struct {
	DailyHours   []reporting.Row `json:"dailyHours"`
	TotalEntries int             `json:"totalEntries"`
}

// TotalHoursResult is the paged per-period totals report.
type TotalHoursResult struct {
	TotalHours   []reporting.Row `json:"totalHours"`
	TotalEntries int             `json:"totalEntries"`
}

// WorkingHoursResult is the paged working-time report.
type WorkingHoursResult struct {
	WorkingHours []reporting.WorkingTimeRow `json:"workingHours"`
	TotalEntries int                        `json:"totalEntries"`
}

// TimerStatus reports a running or just-stopped timer.
type TimerStatus struct {
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// UnmatchedTimecard identifies a backfill candidate no card could be found
// for.
type UnmatchedTimecard struct {
	ID   string `json:"id"`
	Task string `json:"task"`
}

// FixReport summarizes a card-reference backfill run. Partial success is
// the intended behavior: unmatched records are reported, not fatal.
type FixReport struct {
	Fixed     int                 `json:"fixed"`
	Unmatched []UnmatchedTimecard `json:"unmatches,omitempty"`
}

// TimecardService validates and applies mutations on time entries and their
// task records.
type TimecardService interface {
	Insert(ctx context.Context, caller domain.User, input TimecardInput) (*domain.Timecard, error)
	Upsert(ctx context.Context, caller domain.User, input TimecardInput) error
	UpsertWeek(ctx context.Context, caller domain.User, entries []TimecardInput) error
	Update(ctx context.Context, caller domain.User, id string, input TimecardInput) error
	Delete(ctx context.Context, caller domain.User, id string) error
	SetState(ctx context.Context, caller domain.User, ids []string, state domain.State) error
	SendToInvoicing(ctx context.Context, caller domain.User, req ReportRequest) error
	ListForDate(ctx context.Context, caller domain.User, date time.Time) ([]domain.Timecard, error)
	FixCardReferences(ctx context.Context) (*FixReport, error)
}

// ProjectService handles project lifecycle and visibility reads.
type ProjectService interface {
	Create(ctx context.Context, caller domain.User, input ProjectInput) (*domain.Project, error)
	ListForUser(ctx context.Context, caller domain.User) ([]domain.Project, error)
}

// UserService handles caller resolution, team reads and the per-user timer.
type UserService interface {
	FindByToken(ctx context.Context, token string) (*domain.User, error)
	ListTeam(ctx context.Context, userIDs []string) ([]domain.ResourceProfile, error)
	StartTimer(ctx context.Context, caller domain.User) (*TimerStatus, error)
	GetTimer(ctx context.Context, caller domain.User) (*TimerStatus, error)
	StopTimer(ctx context.Context, caller domain.User) (*TimerStatus, error)
}

// ReportService runs the selector-built aggregations.
type ReportService interface {
	GetDailyHours(ctx context.Context, caller domain.User, req ReportRequest) (*DailyHoursResult, error)
	GetTotalHoursForPeriod(ctx context.Context, caller domain.User, req ReportRequest) (*TotalHoursResult, error)
	GetWorkingHoursForPeriod(ctx context.Context, caller domain.User, req ReportRequest) (*WorkingHoursResult, error)
}

// Invoicer submits a built invoice and reports the upstream status code.
type Invoicer interface {
	Submit(ctx context.Context, invoice invoicing.Invoice) (int, error)
}

// InvoicerFactory builds an Invoicer for the caller's stored credentials.
type InvoicerFactory func(url, token string) Invoicer

// CardSource fetches kanban cards from a board export URL.
type CardSource interface {
	FetchBoardCards(ctx context.Context, exportURL string) ([]wekan.Card, error)
}
