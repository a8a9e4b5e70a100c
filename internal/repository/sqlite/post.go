package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB stores posts. Reads join users so Post.Author carries the username.
type PostDB struct {
	conn *sql.DB
}

func selectPosts() sq.SelectBuilder {
	return sq.Select(
		"p.id", "p.text", "p.pub_date", "p.author_id", "u.username", "p.image", "p.group_id",
	).From("posts p").Join("users u ON u.id = p.author_id")
}

func scanPost(row scanner) (*model.Post, error) {
	var (
		p       model.Post
		groupID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Text, &p.PubDate, &p.AuthorID, &p.Author, &p.Image, &groupID); err != nil {
		return nil, err
	}
	p.GroupID = idPtr(groupID)
	return &p, nil
}

// Create inserts a post and sets ID and PubDate. PubDate is assigned here
// and never written again.
func (s *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.PubDate = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO posts (text, pub_date, author_id, image, group_id)
		 VALUES (?, ?, ?, ?, ?)`,
		post.Text,
		post.PubDate,
		post.AuthorID,
		post.Image,
		nullableID(post.GroupID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("group", "referenced group or author does not exist")
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post id: %w", err)
	}
	return nil
}

func (s *PostDB) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building post query: %w", err)
	}

	post, err := scanPost(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return post, nil
}

// List returns posts in publication order. A zero opts.Limit returns every
// post from opts.Offset on.
func (s *PostDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	b := selectPosts().OrderBy("p.pub_date", "p.id")
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			// SQLite only accepts OFFSET after a LIMIT.
			b = b.Limit(math.MaxInt64)
		}
		b = b.Offset(uint64(opts.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building post list: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// Update writes the mutable columns. pub_date is not among them.
func (s *PostDB) Update(ctx context.Context, post *model.Post) error {
	query, args, err := sq.Update("posts").
		Set("text", post.Text).
		Set("author_id", post.AuthorID).
		Set("image", post.Image).
		Set("group_id", nullableID(post.GroupID)).
		Where(sq.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building post update: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("group", "referenced group or author does not exist")
		}
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

// Delete removes a post; its comments are removed by ON DELETE CASCADE.
func (s *PostDB) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}
