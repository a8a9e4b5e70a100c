package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

var _ repository.FollowRepository = (*FollowDB)(nil)

// FollowDB stores follow pairs. The schema enforces UNIQUE(user_id,
// following_id) and user_id <> following_id.
type FollowDB struct {
	conn *sql.DB
}

// Create inserts the pair. A duplicate pair is reported as ErrConflict; a
// self-follow that reaches the CHECK constraint as a validation error.
func (s *FollowDB) Create(ctx context.Context, follow *model.Follow) error {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO follows (user_id, following_id) VALUES (?, ?)`,
		follow.UserID, follow.FollowingID,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict("follow", fmt.Sprintf("%d->%d", follow.UserID, follow.FollowingID))
		case isCheckViolation(err):
			return apperror.ValidationFailed(apperror.NonFieldErrors, "cannot follow yourself")
		case isForeignKeyViolation(err):
			return apperror.NotFound("user", follow.FollowingID)
		}
		return fmt.Errorf("sqlite: creating follow: %w", err)
	}

	follow.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading follow id: %w", err)
	}
	return nil
}

func (s *FollowDB) Exists(ctx context.Context, userID, followingID int64) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE user_id = ? AND following_id = ?)`,
		userID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow %d->%d: %w", userID, followingID, err)
	}
	return exists, nil
}

// likeEscaper makes a user-supplied search term literal inside LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the follows of filter.UserID. SQLite's LIKE is
// case-insensitive for ASCII, which gives the substring search its
// "icontains" behaviour.
func (s *FollowDB) List(ctx context.Context, filter repository.FollowFilter) ([]model.Follow, error) {
	b := sq.Select("f.id", "f.user_id", "u.username", "f.following_id", "t.username").
		From("follows f").
		Join("users u ON u.id = f.user_id").
		Join("users t ON t.id = f.following_id").
		Where(sq.Eq{"f.user_id": filter.UserID}).
		OrderBy("f.id")

	if term := strings.TrimSpace(filter.Search); term != "" {
		b = b.Where(sq.Expr(`t.username LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(term)+"%"))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building follow list: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing follows of user %d: %w", filter.UserID, err)
	}
	defer rows.Close()

	follows := []model.Follow{}
	for rows.Next() {
		var f model.Follow
		if err := rows.Scan(&f.ID, &f.UserID, &f.User, &f.FollowingID, &f.Following); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow row: %w", err)
		}
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating follows: %w", err)
	}
	return follows, nil
}
