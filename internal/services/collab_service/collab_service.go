package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"breate/internal/domain/models"
	"breate/internal/lib/logger/sl"
	"breate/internal/repository"
	"breate/internal/storage"
)

var (
	ErrUsersNotFound  = errors.New("one or both users not found")
	ErrCollabExists   = errors.New("collaboration already exists")
	ErrCollabNotFound = errors.New("collaboration not found")
	ErrSelfCollab     = errors.New("cannot collaborate with yourself")
	ErrNotParty       = errors.New("not a party to this collaboration")
)

type CollabService struct {
	log   *slog.Logger
	links repository.CollabRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewCollabService(log *slog.Logger, links repository.CollabRepository, users repository.UserRepository) *CollabService {
	return &CollabService{
		log:   log,
		links: links,
		users: users,
		now:   time.Now,
	}
}

// Create opens a pending link between two existing users. actor must be one
// of them, and the pair may be linked only once in either order.
func (s *CollabService) Create(ctx context.Context, actor models.User, userA, userB string, projectName *string) (models.CollabLink, error) {
	const op = "services.collab.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_a", userA),
		slog.String("user_b", userB),
	)

	if userA == userB {
		return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrSelfCollab)
	}

	if !isParty(actor, userA, userB) {
		log.Warn("collab created by outsider", slog.Int64("actor_id", actor.ID))

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrNotParty)
	}

	for _, username := range []string{userA, userB} {
		if _, err := s.users.UserByUsername(ctx, username); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrUsersNotFound)
			}

			log.Error("failed to look up user", sl.Err(err))

			return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	link, err := s.links.CreateLink(ctx, models.CollabLink{
		UserAUsername: userA,
		UserBUsername: userB,
		ProjectName:   projectName,
		Status:        models.CollabStatusPending,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrCollabExists):
			return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrCollabExists)
		case errors.Is(err, storage.ErrUserNotFound):
			return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrUsersNotFound)
		}

		log.Error("failed to create collab link", sl.Err(err))

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("collab link created", slog.Int64("link_id", link.ID))

	return link, nil
}

// Verify marks the link between the pair as verified. Verifying an already
// verified link keeps its first timestamp.
func (s *CollabService) Verify(ctx context.Context, actor models.User, userA, userB string) (models.CollabLink, error) {
	const op = "services.collab.Verify"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_a", userA),
		slog.String("user_b", userB),
	)

	if !isParty(actor, userA, userB) {
		log.Warn("collab verified by outsider", slog.Int64("actor_id", actor.ID))

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrNotParty)
	}

	link, err := s.links.FindLink(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrCollabNotFound)
		}

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	if link.Status == models.CollabStatusVerified {
		return link, nil
	}

	at := s.now().UTC()
	if err := s.links.VerifyLink(ctx, link.ID, at); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.CollabLink{}, fmt.Errorf("%s: %w", op, ErrCollabNotFound)
		}

		log.Error("failed to verify collab link", sl.Err(err))

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	link.Status = models.CollabStatusVerified
	link.VerifiedAt = &at

	log.Info("collab link verified", slog.Int64("link_id", link.ID))

	return link, nil
}

// Circle lists username's links from its side.
func (s *CollabService) Circle(ctx context.Context, username string) ([]models.CollabEntry, error) {
	const op = "services.collab.Circle"

	links, err := s.links.LinksByUsername(ctx, username)
	if err != nil {
		s.log.Error("failed to list collab links", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]models.CollabEntry, 0, len(links))
	for _, l := range links {
		entries = append(entries, l.Entry(username))
	}

	return entries, nil
}

func isParty(actor models.User, userA, userB string) bool {
	if actor.Username == nil {
		return false
	}

	return *actor.Username == userA || *actor.Username == userB
}
