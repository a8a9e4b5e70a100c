package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

var _ repository.GroupRepository = (*GroupDB)(nil)

// GroupDB stores groups. Deleting a group leaves its posts in place with
// group_id cleared (ON DELETE SET NULL in the schema).
type GroupDB struct {
	conn *sql.DB
}

func (g *GroupDB) Create(ctx context.Context, group *model.Group) error {
	query, args, err := sq.Insert("post_groups").
		Columns("title", "slug", "description").
		Values(group.Title, group.Slug, group.Description).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building group insert: %w", err)
	}

	res, err := g.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("group", group.Slug)
		}
		return fmt.Errorf("sqlite: creating group %q: %w", group.Slug, err)
	}

	group.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading group id: %w", err)
	}
	return nil
}

func (g *GroupDB) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	var group model.Group
	err := g.conn.QueryRowContext(ctx,
		`SELECT id, title, slug, description FROM post_groups WHERE id = ?`, id,
	).Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("group", id)
		}
		return nil, fmt.Errorf("sqlite: getting group %d: %w", id, err)
	}
	return &group, nil
}

func (g *GroupDB) List(ctx context.Context) ([]model.Group, error) {
	rows, err := g.conn.QueryContext(ctx,
		`SELECT id, title, slug, description FROM post_groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group row: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating groups: %w", err)
	}
	return groups, nil
}

func (g *GroupDB) Delete(ctx context.Context, id int64) error {
	res, err := g.conn.ExecContext(ctx, `DELETE FROM post_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting group %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("group", id)
	}
	return nil
}
