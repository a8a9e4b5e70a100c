package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB stores comments. Every read filters on post_id.
type CommentDB struct {
	conn *sql.DB
}

func selectComments(postID int64) sq.SelectBuilder {
	return sq.Select("c.id", "c.post_id", "c.author_id", "u.username", "c.text", "c.created").
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(sq.Eq{"c.post_id": postID})
}

func scanComment(row scanner) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Text, &c.Created); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.Created = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, author_id, text, created) VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.AuthorID,
		comment.Text,
		comment.Created,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("post", comment.PostID)
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	return nil
}

// GetByID finds comment id under postID. A comment that exists under a
// different post is reported as not found.
func (s *CommentDB) GetByID(ctx context.Context, postID, id int64) (*model.Comment, error) {
	query, args, err := selectComments(postID).Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building comment query: %w", err)
	}

	c, err := scanComment(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListByPost returns the comments of postID in the order they were written.
func (s *CommentDB) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query, args, err := selectComments(postID).OrderBy("c.created", "c.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building comment list: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// Update rewrites text, author and post. created is immutable.
func (s *CommentDB) Update(ctx context.Context, comment *model.Comment) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE comments SET text = ?, author_id = ?, post_id = ? WHERE id = ?`,
		comment.Text,
		comment.AuthorID,
		comment.PostID,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %d: %w", comment.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

func (s *CommentDB) Delete(ctx context.Context, postID, id int64) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND post_id = ?`, id, postID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
