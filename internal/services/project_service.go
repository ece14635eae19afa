package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/repository/sqlite"
	"github.com/schnell18/titra/internal/validation"
)

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.ProjectValidator
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(repo sqlite.Repository) ProjectService {
	return &projectServiceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(),
		validator: validation.NewProjectValidator(),
	}
}

// Create registers a new project owned by the caller.
func (s *projectServiceImpl) Create(ctx context.Context, caller domain.User, input ProjectInput) (*domain.Project, error) {
	if err := s.validator.ValidateForCreation(input.Name); err != nil {
		return nil, err
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		UserID:      caller.ID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Customer:    input.Customer,
		Rate:        input.Rate,
		Budget:      input.Budget,
	}
	dbProject, err := s.mapper.Project.ToDatabase(project)
	if err != nil {
		return nil, errors.NewDatabaseError("map project", err)
	}
	if err := s.repo.CreateProject(ctx, &dbProject); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns every project visible to the caller: owned, public or
// shared through team membership.
func (s *projectServiceImpl) ListForUser(ctx context.Context, caller domain.User) ([]domain.Project, error) {
	dbProjects, err := s.repo.ListProjectsForUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(dbProjects))
	for _, dbProject := range dbProjects {
		project, err := s.mapper.Project.FromDatabase(*dbProject)
		if err != nil {
			return nil, errors.NewDatabaseError("map project", err)
		}
		projects = append(projects, project)
	}
	return projects, nil
}
