package services

import (
	"context"
	"time"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
	now    func() time.Time
}

// NewUserService creates a new UserService instance
func NewUserService(repo sqlite.Repository) UserService {
	return &userServiceImpl{
		repo:   repo,
		mapper: domain.NewMapper(),
		now:    time.Now,
	}
}

// FindByToken resolves the caller behind an API token. An unknown or empty
// token resolves to an unauthorized error, never to a user.
func (s *userServiceImpl) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("missing API token")
	}
	dbUser, err := s.repo.FindUserByAPIToken(ctx, token)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewUnauthorizedError("invalid API token")
		}
		return nil, err
	}
	user, err := s.mapper.User.FromDatabase(*dbUser)
	if err != nil {
		return nil, errors.NewDatabaseError("map user", err)
	}
	return &user, nil
}

// ListTeam returns the display profiles of the given users, skipping
// deactivated accounts.
func (s *userServiceImpl) ListTeam(ctx context.Context, userIDs []string) ([]domain.ResourceProfile, error) {
	dbUsers, err := s.repo.ListUsersByIDs(ctx, userIDs, true)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.ResourceProfile, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		user, err := s.mapper.User.FromDatabase(*dbUser)
		if err != nil {
			return nil, errors.NewDatabaseError("map user", err)
		}
		profiles = append(profiles, domain.ResourceProfileOf(user))
	}
	return profiles, nil
}

// StartTimer starts the caller's timer. A caller has at most one running
// timer.
func (s *userServiceImpl) StartTimer(ctx context.Context, caller domain.User) (*TimerStatus, error) {
	if caller.HasRunningTimer() {
		return nil, errors.NewTimerAlreadyRunningError()
	}
	start := s.now()
	if err := s.repo.SetUserTimer(ctx, caller.ID, &start); err != nil {
		return nil, err
	}
	return &TimerStatus{StartTime: start}, nil
}

// GetTimer reports the caller's running timer and its elapsed duration.
func (s *userServiceImpl) GetTimer(ctx context.Context, caller domain.User) (*TimerStatus, error) {
	if !caller.HasRunningTimer() {
		return nil, errors.NewNoRunningTimerError()
	}
	start := *caller.Profile.Timer
	return &TimerStatus{
		StartTime: start,
		Duration:  s.now().Sub(start),
	}, nil
}

// StopTimer stops the caller's timer and reports its final duration.
func (s *userServiceImpl) StopTimer(ctx context.Context, caller domain.User) (*TimerStatus, error) {
	if !caller.HasRunningTimer() {
		return nil, errors.NewNoRunningTimerError()
	}
	start := *caller.Profile.Timer
	if err := s.repo.SetUserTimer(ctx, caller.ID, nil); err != nil {
		return nil, err
	}
	return &TimerStatus{
		StartTime: start,
		Duration:  s.now().Sub(start),
	}, nil
}
