package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"breate/internal/domain/models"
	"breate/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const collabLinksTable = "collab_links"

var collabColumns = []string{
	"id",
	"user_a_username",
	"user_b_username",
	"project_name",
	"status",
	"verified_at",
	"created_at",
}

type CollabRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCollabRepository(db *pgxpool.Pool) *CollabRepo {
	return &CollabRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanCollab(row pgx.Row) (models.CollabLink, error) {
	var l models.CollabLink

	err := row.Scan(
		&l.ID,
		&l.UserAUsername,
		&l.UserBUsername,
		&l.ProjectName,
		&l.Status,
		&l.VerifiedAt,
		&l.CreatedAt,
	)

	return l, err
}

// between matches the pair in either order.
func between(usernameA, usernameB string) sq.Or {
	return sq.Or{
		sq.Eq{"user_a_username": usernameA, "user_b_username": usernameB},
		sq.Eq{"user_a_username": usernameB, "user_b_username": usernameA},
	}
}

// CreateLink stores a pending link unless the pair is already linked.
func (r *CollabRepo) CreateLink(ctx context.Context, link models.CollabLink) (models.CollabLink, error) {
	const op = "repository.collab_repository.CreateLink"

	if link.Status == "" {
		link.Status = models.CollabStatusPending
	}

	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		// serialises concurrent creates for the same pair
		if _, err := tx.Exec(ctx,
			"SELECT pg_advisory_xact_lock(hashtext(LEAST($1::text, $2::text) || ':' || GREATEST($1::text, $2::text)))",
			link.UserAUsername, link.UserBUsername,
		); err != nil {
			return err
		}

		query, args, err := r.sb.Select("1").
			From(collabLinksTable).
			Where(between(link.UserAUsername, link.UserBUsername)).
			Limit(1).
			ToSql()
		if err != nil {
			return err
		}

		var exists int
		err = tx.QueryRow(ctx, query, args...).Scan(&exists)
		switch {
		case err == nil:
			return storage.ErrCollabExists
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		query, args, err = r.sb.Insert(collabLinksTable).
			Columns("user_a_username", "user_b_username", "project_name", "status").
			Values(link.UserAUsername, link.UserBUsername, link.ProjectName, link.Status).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&link.ID, &link.CreatedAt); err != nil {
			if _, ok := isForeignKeyViolation(err); ok {
				return storage.ErrUserNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

func (r *CollabRepo) FindLink(ctx context.Context, usernameA, usernameB string) (models.CollabLink, error) {
	const op = "repository.collab_repository.FindLink"

	query, args, err := r.sb.Select(collabColumns...).
		From(collabLinksTable).
		Where(between(usernameA, usernameB)).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	link, err := scanCollab(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CollabLink{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.CollabLink{}, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

func (r *CollabRepo) VerifyLink(ctx context.Context, linkID int64, at time.Time) error {
	const op = "repository.collab_repository.VerifyLink"

	query, args, err := r.sb.Update(collabLinksTable).
		Set("status", models.CollabStatusVerified).
		Set("verified_at", at).
		Where(sq.Eq{"id": linkID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (r *CollabRepo) LinksByUsername(ctx context.Context, username string) ([]models.CollabLink, error) {
	const op = "repository.collab_repository.LinksByUsername"

	query, args, err := r.sb.Select(collabColumns...).
		From(collabLinksTable).
		Where(sq.Or{
			sq.Eq{"user_a_username": username},
			sq.Eq{"user_b_username": username},
		}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	links := make([]models.CollabLink, 0)
	for rows.Next() {
		l, err := scanCollab(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return links, nil
}
