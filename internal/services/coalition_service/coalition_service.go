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
	ErrCoalitionNotFound = errors.New("coalition not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyMember     = errors.New("user already a member")
	ErrNotMember         = errors.New("user not a member of this coalition")
)

type CoalitionService struct {
	log  *slog.Logger
	repo repository.CoalitionRepository
}

func NewCoalitionService(log *slog.Logger, repo repository.CoalitionRepository) *CoalitionService {
	return &CoalitionService{log: log, repo: repo}
}

// List filters by a case-insensitive search over name, focus and location,
// and by exact region unless region is "All".
func (s *CoalitionService) List(ctx context.Context, filter models.CoalitionFilter) ([]models.Coalition, error) {
	const op = "services.coalition.List"

	list, err := s.repo.ListCoalitions(ctx, filter)
	if err != nil {
		s.log.Error("failed to list coalitions", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *CoalitionService) Get(ctx context.Context, id int64) (models.Coalition, error) {
	const op = "services.coalition.Get"

	c, err := s.repo.CoalitionByID(ctx, id)
	if err != nil {
		return models.Coalition{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return c, nil
}

func (s *CoalitionService) Create(ctx context.Context, coalition models.Coalition) (models.Coalition, error) {
	const op = "services.coalition.Create"

	log := s.log.With(slog.String("op", op), slog.String("name", coalition.Name))

	saved, err := s.repo.SaveCoalition(ctx, coalition)
	if err != nil {
		log.Error("failed to save coalition", sl.Err(err))

		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("coalition created", slog.Int64("id", saved.ID))

	return saved, nil
}

// Delete removes the coalition and returns its name.
func (s *CoalitionService) Delete(ctx context.Context, id int64) (string, error) {
	const op = "services.coalition.Delete"

	name, err := s.repo.DeleteCoalition(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	s.log.Info("coalition deleted", slog.String("op", op), slog.Int64("id", id))

	return name, nil
}

func (s *CoalitionService) Join(ctx context.Context, coalitionID, userID int64) error {
	const op = "services.coalition.Join"

	if err := s.repo.AddMember(ctx, coalitionID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	s.log.Info("user joined coalition",
		slog.String("op", op),
		slog.Int64("coalition_id", coalitionID),
		slog.Int64("user_id", userID),
	)

	return nil
}

func (s *CoalitionService) Leave(ctx context.Context, coalitionID, userID int64) error {
	const op = "services.coalition.Leave"

	if err := s.repo.RemoveMember(ctx, coalitionID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	s.log.Info("user left coalition",
		slog.String("op", op),
		slog.Int64("coalition_id", coalitionID),
		slog.Int64("user_id", userID),
	)

	return nil
}

// Members fails with ErrCoalitionNotFound for an unknown coalition rather
// than returning an empty list.
func (s *CoalitionService) Members(ctx context.Context, coalitionID int64) ([]models.User, error) {
	const op = "services.coalition.Members"

	if _, err := s.repo.CoalitionByID(ctx, coalitionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	members, err := s.repo.Members(ctx, coalitionID)
	if err != nil {
		s.log.Error("failed to list members", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrCoalitionNotFound
	case errors.Is(err, storage.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, storage.ErrAlreadyMember):
		return ErrAlreadyMember
	case errors.Is(err, storage.ErrNotMember):
		return ErrNotMember
	}

	return err
}
