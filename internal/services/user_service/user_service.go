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
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("not authorized to edit this profile")
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUsernameLocked is returned when collab links still point at the old username.
	ErrUsernameLocked = errors.New("username is referenced by collaborations")
)

type UserService struct {
	log  *slog.Logger
	repo repository.UserRepository
}

func NewUserService(log *slog.Logger, repo repository.UserRepository) *UserService {
	return &UserService{log: log, repo: repo}
}

func (s *UserService) Profile(ctx context.Context, username string) (models.User, error) {
	const op = "services.user.Profile"

	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		s.log.Error("failed to get profile", slog.String("op", op), sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile applies update to the profile of username. Only the owner
// may change it.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.User, username string, update models.ProfileUpdate) (models.User, error) {
	const op = "services.user.UpdateProfile"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
		slog.Int64("actor_id", actor.ID),
	)

	target, err := s.Profile(ctx, username)
	if err != nil {
		return models.User{}, err
	}

	if target.ID != actor.ID {
		log.Warn("profile update by non-owner")

		return models.User{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.repo.UpdateProfile(ctx, target.ID, update); err != nil {
		switch {
		case errors.Is(err, storage.ErrUsernameTaken):
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		case errors.Is(err, storage.ErrReferenced):
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUsernameLocked)
		case errors.Is(err, storage.ErrUserNotFound):
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to update profile", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	update.Apply(&target)

	log.Info("profile updated")

	return target, nil
}

func (s *UserService) Discover(ctx context.Context, filter models.UserFilter) ([]models.Creator, error) {
	const op = "services.user.Discover"

	creators, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return creators, nil
}
