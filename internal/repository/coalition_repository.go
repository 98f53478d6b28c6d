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
	coalitionsTable       = "coalitions"
	coalitionMembersTable = "coalition_members"

	// regionAll disables the region filter.
	regionAll = "All"
)

var coalitionColumns = []string{"id", "name", "description", "focus", "location", "created_at"}

type CoalitionRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCoalitionRepository(db *pgxpool.Pool) *CoalitionRepo {
	return &CoalitionRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanCoalition(row pgx.Row) (models.Coalition, error) {
	var c models.Coalition

	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Focus, &c.Location, &c.CreatedAt)
	c.Members = []models.Member{}

	return c, err
}

func (r *CoalitionRepo) ListCoalitions(ctx context.Context, filter models.CoalitionFilter) ([]models.Coalition, error) {
	const op = "repository.coalition_repository.ListCoalitions"

	builder := r.sb.Select(coalitionColumns...).From(coalitionsTable).OrderBy("id")

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		builder = builder.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"focus": pattern},
			sq.ILike{"location": pattern},
		})
	}
	if filter.Region != "" && filter.Region != regionAll {
		builder = builder.Where(sq.Eq{"location": filter.Region})
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

	coalitions := make([]models.Coalition, 0)
	index := make(map[int64]int)
	for rows.Next() {
		c, err := scanCoalition(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		index[c.ID] = len(coalitions)
		coalitions = append(coalitions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(coalitions) == 0 {
		return coalitions, nil
	}

	ids := make([]int64, 0, len(coalitions))
	for _, c := range coalitions {
		ids = append(ids, c.ID)
	}

	members, err := r.membersOf(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for coalitionID, list := range members {
		coalitions[index[coalitionID]].Members = list
	}

	return coalitions, nil
}

// membersOf loads the member summaries of every coalition in ids.
func (r *CoalitionRepo) membersOf(ctx context.Context, ids []int64) (map[int64][]models.Member, error) {
	query, args, err := r.sb.Select("cm.coalition_id", "u.id", "u.email").
		From(coalitionMembersTable + " cm").
		Join(usersTable + " u ON u.id = cm.user_id").
		Where(sq.Eq{"cm.coalition_id": ids}).
		OrderBy("cm.coalition_id", "u.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[int64][]models.Member)
	for rows.Next() {
		var (
			coalitionID int64
			m           models.Member
		)
		if err := rows.Scan(&coalitionID, &m.ID, &m.Email); err != nil {
			return nil, err
		}
		members[coalitionID] = append(members[coalitionID], m)
	}

	return members, rows.Err()
}

func (r *CoalitionRepo) CoalitionByID(ctx context.Context, id int64) (models.Coalition, error) {
	const op = "repository.coalition_repository.CoalitionByID"

	query, args, err := r.sb.Select(coalitionColumns...).
		From(coalitionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := scanCoalition(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Coalition{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}

	members, err := r.membersOf(ctx, []int64{id})
	if err != nil {
		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}
	if list, ok := members[id]; ok {
		c.Members = list
	}

	return c, nil
}

func (r *CoalitionRepo) SaveCoalition(ctx context.Context, coalition models.Coalition) (models.Coalition, error) {
	const op = "repository.coalition_repository.SaveCoalition"

	query, args, err := r.sb.Insert(coalitionsTable).
		Columns("name", "description", "focus", "location").
		Values(coalition.Name, coalition.Description, coalition.Focus, coalition.Location).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&coalition.ID, &coalition.CreatedAt); err != nil {
		return models.Coalition{}, fmt.Errorf("%s: %w", op, err)
	}

	coalition.Members = []models.Member{}

	return coalition, nil
}

// DeleteCoalition removes the coalition and its memberships and returns its name.
func (r *CoalitionRepo) DeleteCoalition(ctx context.Context, id int64) (string, error) {
	const op = "repository.coalition_repository.DeleteCoalition"

	query, args, err := r.sb.Delete(coalitionsTable).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING name").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var name string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return name, nil
}

func (r *CoalitionRepo) AddMember(ctx context.Context, coalitionID, userID int64) error {
	const op = "repository.coalition_repository.AddMember"

	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		if err := r.lockCoalition(ctx, tx, coalitionID); err != nil {
			return err
		}

		query, args, err := r.sb.Insert(coalitionMembersTable).
			Columns("user_id", "coalition_id").
			Values(userID, coalitionID).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if _, ok := isUniqueViolation(err); ok {
				return storage.ErrAlreadyMember
			}
			if _, ok := isForeignKeyViolation(err); ok {
				return storage.ErrUserNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *CoalitionRepo) RemoveMember(ctx context.Context, coalitionID, userID int64) error {
	const op = "repository.coalition_repository.RemoveMember"

	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		if err := r.lockCoalition(ctx, tx, coalitionID); err != nil {
			return err
		}

		query, args, err := r.sb.Delete(coalitionMembersTable).
			Where(sq.Eq{"user_id": userID, "coalition_id": coalitionID}).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return storage.ErrNotMember
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// lockCoalition holds the coalition row for the rest of tx so membership
// changes cannot race a delete.
func (r *CoalitionRepo) lockCoalition(ctx context.Context, tx pgx.Tx, coalitionID int64) error {
	query, args, err := r.sb.Select("id").
		From(coalitionsTable).
		Where(sq.Eq{"id": coalitionID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}

		return err
	}

	return nil
}

func (r *CoalitionRepo) Members(ctx context.Context, coalitionID int64) ([]models.User, error) {
	const op = "repository.coalition_repository.Members"

	columns := make([]string, 0, len(userColumns))
	for _, c := range userColumns {
		columns = append(columns, "u."+c)
	}

	query, args, err := r.sb.Select(columns...).
		From(usersTable + " u").
		Join(coalitionMembersTable + " cm ON cm.user_id = u.id").
		Where(sq.Eq{"cm.coalition_id": coalitionID}).
		OrderBy("u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}
