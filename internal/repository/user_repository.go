package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"breate/internal/domain/models"
	"breate/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	usersTable = "users"

	usersUsernameKey = "users_username_key"
)

var userColumns = []string{
	"id",
	"email",
	"password",
	"username",
	"full_name",
	"bio",
	"preferred_themes",
	"portfolio_links",
	"next_build",
	"affiliations",
	"archetype_id",
	"tier_id",
	"created_at",
}

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Username,
		&user.FullName,
		&user.Bio,
		&user.PreferredThemes,
		&user.PortfolioLinks,
		&user.NextBuild,
		&user.Affiliations,
		&user.ArchetypeID,
		&user.TierID,
		&user.CreatedAt,
	)

	return user, err
}

func (r *UserRepo) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "repository.user_repository.SaveUser"

	query, args, err := r.sb.Insert(usersTable).
		Columns(
			"email",
			"password",
			"username",
			"archetype_id",
			"tier_id",
		).
		Values(
			user.Email,
			user.PasswordHash,
			user.Username,
			user.ArchetypeID,
			user.TierID,
		).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			if constraint == usersUsernameKey {
				return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUsernameTaken)
			}

			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		if _, ok := isForeignKeyViolation(err); ok {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidForeign)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.userBy(ctx, "repository.user_repository.UserByEmail", sq.Eq{"email": email})
}

func (r *UserRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.userBy(ctx, "repository.user_repository.UserByUsername", sq.Eq{"username": username})
}

func (r *UserRepo) UserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.userBy(ctx, "repository.user_repository.UserByID", sq.Eq{"id": userID})
}

func (r *UserRepo) userBy(ctx context.Context, op string, where sq.Eq) (models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From(usersTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile writes only the allow-listed profile columns that are set.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	const op = "repository.user_repository.UpdateProfile"

	if update.IsEmpty() {
		return nil
	}

	builder := r.sb.Update(usersTable).Where(sq.Eq{"id": userID})

	fields := []struct {
		column string
		value  *string
	}{
		{"full_name", update.FullName},
		{"username", update.Username},
		{"bio", update.Bio},
		{"preferred_themes", update.PreferredThemes},
		{"portfolio_links", update.PortfolioLinks},
		{"next_build", update.NextBuild},
		{"affiliations", update.Affiliations},
	}
	for _, f := range fields {
		if f.value != nil {
			builder = builder.Set(f.column, *f.value)
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%s: %w", op, storage.ErrUsernameTaken)
		}
		if _, ok := isForeignKeyViolation(err); ok {
			return fmt.Errorf("%s: %w", op, storage.ErrReferenced)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const op = "repository.user_repository.UpdatePassword"

	query, args, err := r.sb.Update(usersTable).
		Set("password", passwordHash).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.Creator, error) {
	const op = "repository.user_repository.ListUsers"

	builder := r.sb.Select("u.id", "u.username", "u.bio", "a.name", "t.name").
		From(usersTable + " u").
		LeftJoin("archetypes a ON a.id = u.archetype_id").
		LeftJoin("tiers t ON t.id = u.tier_id").
		OrderBy("u.id")

	// Ids start at 1, so 0 means no filter.
	if filter.Name != "" {
		builder = builder.Where(sq.ILike{"u.username": containsPattern(filter.Name)})
	}
	if filter.ArchetypeID != nil && *filter.ArchetypeID != 0 {
		builder = builder.Where(sq.Eq{"u.archetype_id": *filter.ArchetypeID})
	}
	if filter.TierID != nil && *filter.TierID != 0 {
		builder = builder.Where(sq.Eq{"u.tier_id": *filter.TierID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	creators := make([]models.Creator, 0)
	for rows.Next() {
		var c models.Creator
		if err := rows.Scan(&c.ID, &c.Username, &c.Bio, &c.Archetype, &c.Tier); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		creators = append(creators, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return creators, nil
}
