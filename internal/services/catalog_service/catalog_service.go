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
	ErrNoArchetypes      = errors.New("no archetypes found")
	ErrNoTiers           = errors.New("no tiers found")
	ErrArchetypeNotFound = errors.New("archetype not found")
	ErrTierNotFound      = errors.New("tier not found")
	ErrNameTaken         = errors.New("name already exists")
	ErrInUse             = errors.New("still assigned to users")
)

// CatalogService serves the archetype and tier classifications.
type CatalogService struct {
	log        *slog.Logger
	archetypes repository.ArchetypeRepository
	tiers      repository.TierRepository
}

func NewCatalogService(log *slog.Logger, archetypes repository.ArchetypeRepository, tiers repository.TierRepository) *CatalogService {
	return &CatalogService{
		log:        log,
		archetypes: archetypes,
		tiers:      tiers,
	}
}

// ListArchetypes fails with ErrNoArchetypes when the table is empty.
func (s *CatalogService) ListArchetypes(ctx context.Context) ([]models.Archetype, error) {
	const op = "services.catalog.ListArchetypes"

	list, err := s.archetypes.ListArchetypes(ctx)
	if err != nil {
		s.log.Error("failed to list archetypes", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoArchetypes)
	}

	return list, nil
}

func (s *CatalogService) Archetype(ctx context.Context, id int64) (models.Archetype, error) {
	const op = "services.catalog.Archetype"

	a, err := s.archetypes.ArchetypeByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Archetype{}, fmt.Errorf("%s: %w", op, ErrArchetypeNotFound)
		}

		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (s *CatalogService) CreateArchetype(ctx context.Context, archetype models.Archetype) (models.Archetype, error) {
	const op = "services.catalog.CreateArchetype"

	log := s.log.With(slog.String("op", op), slog.String("name", archetype.Name))

	saved, err := s.archetypes.SaveArchetype(ctx, archetype)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return models.Archetype{}, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		log.Error("failed to save archetype", sl.Err(err))

		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("archetype created", slog.Int64("id", saved.ID))

	return saved, nil
}

func (s *CatalogService) DeleteArchetype(ctx context.Context, id int64) error {
	const op = "services.catalog.DeleteArchetype"

	if err := s.archetypes.DeleteArchetype(ctx, id); err != nil {
		return s.deleteErr(op, err, ErrArchetypeNotFound)
	}

	s.log.Info("archetype deleted", slog.String("op", op), slog.Int64("id", id))

	return nil
}

// ListTiers fails with ErrNoTiers when the table is empty.
func (s *CatalogService) ListTiers(ctx context.Context) ([]models.Tier, error) {
	const op = "services.catalog.ListTiers"

	list, err := s.tiers.ListTiers(ctx)
	if err != nil {
		s.log.Error("failed to list tiers", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoTiers)
	}

	return list, nil
}

func (s *CatalogService) Tier(ctx context.Context, id int64) (models.Tier, error) {
	const op = "services.catalog.Tier"

	t, err := s.tiers.TierByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Tier{}, fmt.Errorf("%s: %w", op, ErrTierNotFound)
		}

		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *CatalogService) CreateTier(ctx context.Context, tier models.Tier) (models.Tier, error) {
	const op = "services.catalog.CreateTier"

	log := s.log.With(slog.String("op", op), slog.String("name", tier.Name))

	saved, err := s.tiers.SaveTier(ctx, tier)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return models.Tier{}, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		log.Error("failed to save tier", sl.Err(err))

		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tier created", slog.Int64("id", saved.ID))

	return saved, nil
}

func (s *CatalogService) DeleteTier(ctx context.Context, id int64) error {
	const op = "services.catalog.DeleteTier"

	if err := s.tiers.DeleteTier(ctx, id); err != nil {
		return s.deleteErr(op, err, ErrTierNotFound)
	}

	s.log.Info("tier deleted", slog.String("op", op), slog.Int64("id", id))

	return nil
}

func (s *CatalogService) deleteErr(op string, err, notFound error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, notFound)
	case errors.Is(err, storage.ErrReferenced):
		return fmt.Errorf("%s: %w", op, ErrInUse)
	}

	s.log.Error("failed to delete", slog.String("op", op), sl.Err(err))

	return fmt.Errorf("%s: %w", op, err)
}
