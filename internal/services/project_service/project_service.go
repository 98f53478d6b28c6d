package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"breate/internal/domain/models"
	"breate/internal/lib/logger/sl"
	"breate/internal/repository"
	"breate/internal/storage"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrForbidden       = errors.New("not authorized to delete this project")
)

type ProjectService struct {
	log  *slog.Logger
	repo repository.ProjectRepository
}

func NewProjectService(log *slog.Logger, repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{log: log, repo: repo}
}

// List returns projects newest first.
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	const op = "services.project.List"

	list, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (models.Project, error) {
	const op = "services.project.Get"

	p, err := s.repo.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Project{}, fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// Create records poster as the owner of the project.
func (s *ProjectService) Create(ctx context.Context, poster models.User, project models.Project) (models.Project, error) {
	const op = "services.project.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("poster_id", poster.ID),
	)

	project.PosterID = &poster.ID

	saved, err := s.repo.SaveProject(ctx, project)
	if err != nil {
		log.Error("failed to save project", sl.Err(err))

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("project created", slog.Int64("id", saved.ID))

	return saved, nil
}

// Delete lets the poster remove a project and returns its title. Projects
// whose poster is gone may be removed by any authenticated user.
func (s *ProjectService) Delete(ctx context.Context, actor models.User, id int64) (string, error) {
	const op = "services.project.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("project_id", id),
		slog.Int64("actor_id", actor.ID),
	)

	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if p.PosterID != nil && *p.PosterID != actor.ID {
		log.Warn("project delete by non-poster")

		return "", fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}

		log.Error("failed to delete project", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("project deleted")

	return p.Title, nil
}
