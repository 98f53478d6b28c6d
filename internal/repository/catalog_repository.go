package repository

import (
	"context"
	"errors"
	"fmt"

	"breate/internal/domain/models"
	"breate/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	archetypesTable = "archetypes"
	tiersTable      = "tiers"
)

type ArchetypeRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewArchetypeRepository(db *pgxpool.Pool) *ArchetypeRepo {
	return &ArchetypeRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ArchetypeRepo) ListArchetypes(ctx context.Context) ([]models.Archetype, error) {
	const op = "repository.catalog_repository.ListArchetypes"

	query, args, err := r.sb.Select("id", "name", "description").
		From(archetypesTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	archetypes := make([]models.Archetype, 0)
	for rows.Next() {
		var a models.Archetype
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		archetypes = append(archetypes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return archetypes, nil
}

func (r *ArchetypeRepo) ArchetypeByID(ctx context.Context, id int64) (models.Archetype, error) {
	const op = "repository.catalog_repository.ArchetypeByID"

	query, args, err := r.sb.Select("id", "name", "description").
		From(archetypesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	var a models.Archetype
	if err := r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Name, &a.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Archetype{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (r *ArchetypeRepo) SaveArchetype(ctx context.Context, archetype models.Archetype) (models.Archetype, error) {
	const op = "repository.catalog_repository.SaveArchetype"

	query, args, err := r.sb.Insert(archetypesTable).
		Columns("name", "description").
		Values(archetype.Name, archetype.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&archetype.ID); err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return models.Archetype{}, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return models.Archetype{}, fmt.Errorf("%s: %w", op, err)
	}

	return archetype, nil
}

func (r *ArchetypeRepo) DeleteArchetype(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "repository.catalog_repository.DeleteArchetype", archetypesTable, id)
}

type TierRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewTierRepository(db *pgxpool.Pool) *TierRepo {
	return &TierRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *TierRepo) ListTiers(ctx context.Context) ([]models.Tier, error) {
	const op = "repository.catalog_repository.ListTiers"

	query, args, err := r.sb.Select("id", "name", "level", "description").
		From(tiersTable).
		OrderBy("level", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tiers := make([]models.Tier, 0)
	for rows.Next() {
		var t models.Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.Level, &t.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tiers = append(tiers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tiers, nil
}

func (r *TierRepo) TierByID(ctx context.Context, id int64) (models.Tier, error) {
	const op = "repository.catalog_repository.TierByID"

	query, args, err := r.sb.Select("id", "name", "level", "description").
		From(tiersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	var t models.Tier
	if err := r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.Level, &t.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tier{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (r *TierRepo) SaveTier(ctx context.Context, tier models.Tier) (models.Tier, error) {
	const op = "repository.catalog_repository.SaveTier"

	query, args, err := r.sb.Insert(tiersTable).
		Columns("name", "level", "description").
		Values(tier.Name, tier.Level, tier.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&tier.ID); err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return models.Tier{}, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return models.Tier{}, fmt.Errorf("%s: %w", op, err)
	}

	return tier, nil
}

func (r *TierRepo) DeleteTier(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "repository.catalog_repository.DeleteTier", tiersTable, id)
}

// deleteByID removes one row by primary key. Rows still referenced by a
// foreign key come back as storage.ErrReferenced.
func deleteByID(ctx context.Context, db *pgxpool.Pool, sb sq.StatementBuilderType, op, table string, id int64) error {
	query, args, err := sb.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return fmt.Errorf("%s: %w", op, storage.ErrReferenced)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
