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
	"github.com/lib/pq"
)

const projectsTable = "projects"

var projectColumns = []string{
	"id",
	"title",
	"objective",
	"project_type",
	"needed_archetypes",
	"open_roles",
	"timeline",
	"region",
	"coalition_tags",
	"poster_id",
	"created_at",
}

type ProjectRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanProject(row pgx.Row) (models.Project, error) {
	var p models.Project

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Objective,
		&p.ProjectType,
		&p.NeededArchetypes,
		&p.OpenRoles,
		&p.Timeline,
		&p.Region,
		&p.CoalitionTags,
		&p.PosterID,
		&p.CreatedAt,
	)
	if p.NeededArchetypes == nil {
		p.NeededArchetypes = []string{}
	}
	if p.CoalitionTags == nil {
		p.CoalitionTags = []string{}
	}

	return p, err
}

// ListProjects returns projects newest first.
func (r *ProjectRepo) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	const op = "repository.project_repository.ListProjects"

	builder := r.sb.Select(projectColumns...).
		From(projectsTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.Archetype != "" {
		builder = builder.Where("needed_archetypes @> ?", pq.Array([]string{filter.Archetype}))
	}
	if filter.Region != "" && filter.Region != regionAll {
		builder = builder.Where(sq.Eq{"region": filter.Region})
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

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (r *ProjectRepo) ProjectByID(ctx context.Context, id int64) (models.Project, error) {
	const op = "repository.project_repository.ProjectByID"

	query, args, err := r.sb.Select(projectColumns...).
		From(projectsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Project{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (r *ProjectRepo) SaveProject(ctx context.Context, project models.Project) (models.Project, error) {
	const op = "repository.project_repository.SaveProject"

	if project.NeededArchetypes == nil {
		project.NeededArchetypes = []string{}
	}
	if project.CoalitionTags == nil {
		project.CoalitionTags = []string{}
	}

	query, args, err := r.sb.Insert(projectsTable).
		Columns(
			"title",
			"objective",
			"project_type",
			"needed_archetypes",
			"open_roles",
			"timeline",
			"region",
			"coalition_tags",
			"poster_id",
		).
		Values(
			project.Title,
			project.Objective,
			project.ProjectType,
			pq.Array(project.NeededArchetypes),
			project.OpenRoles,
			project.Timeline,
			project.Region,
			pq.Array(project.CoalitionTags),
			project.PosterID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&project.ID, &project.CreatedAt); err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return models.Project{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidForeign)
		}

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

func (r *ProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "repository.project_repository.DeleteProject", projectsTable, id)
}
