package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

const postColumns = `id, author_id, title, body, image, created_at, updated_at`

// Repository provides post persistence on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a post repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// Get fetches a single post.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// Create inserts a post with an optional image asset name.
func (r *Repository) Create(ctx context.Context, authorID uuid.UUID, title, body string, image *string) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO posts (id, author_id, title, body, image)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + postColumns + `;`

	p, err := scanPost(r.pool.QueryRow(ctx, query, uuid.New(), authorID, title, body, image))
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Update overwrites the mutable fields of p, including its image reference.
func (r *Repository) Update(ctx context.Context, p Post) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE posts
SET title = $2, body = $3, image = $4, updated_at = NOW()
WHERE id = $1
RETURNING ` + postColumns + `;`

	updated, err := scanPost(r.pool.QueryRow(ctx, query, p.ID, p.Title, p.Body, p.Image))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// Delete removes a post and returns the deleted row so its image can be retired.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	p, err := scanPost(r.pool.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING `+postColumns+`;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}
