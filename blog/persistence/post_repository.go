package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/dfryer1193/goblog-backend/shared/db"
)

var (
	_ domain.PostStore      = (*SQLitePostRepository)(nil)
	_ domain.PostRepository = (*SQLitePostRepository)(nil)
)

const defaultPostsPerPage = 10

// SQLitePostRepository implements domain.PostStore and domain.PostRepository
// on top of the posts table.
type SQLitePostRepository struct {
	db           *sql.DB
	postsPerPage int
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB.
// postsPerPage sizes the pages handed out by Paginator.
func NewPostRepository(db *sql.DB, postsPerPage int) *SQLitePostRepository {
	if postsPerPage <= 0 {
		postsPerPage = defaultPostsPerPage
	}

	return &SQLitePostRepository{
		db:           db,
		postsPerPage: postsPerPage,
	}
}

// NewPost returns an unsaved post.
func (r *SQLitePostRepository) NewPost() *domain.Post {
	return &domain.Post{}
}

const postColumns = `id, title, content, author, published, published_at, created_at, updated_at`

const getPostQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE id = ?
`

// FindPost retrieves a single post by ID
func (r *SQLitePostRepository) FindPost(ctx context.Context, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrPostNotFound, id)
	}

	row, err := scanPost(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getPostQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain(), nil
}

const countPostsQuery = `SELECT COUNT(*) FROM posts`

// Paginator counts the posts and returns a paginator positioned on page 1.
func (r *SQLitePostRepository) Paginator(ctx context.Context, sorter domain.Sorter) (domain.Paginator, error) {
	var total int
	if err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, countPostsQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	return newPaginator(r, sorter, r.postsPerPage, total), nil
}

// listPosts is the query behind Paginator.CurrentPageResults.
// Unknown sort columns fall back to the default ordering.
func (r *SQLitePostRepository) listPosts(ctx context.Context, sorter domain.Sorter, limit, offset int) ([]*domain.Post, error) {
	if !domain.IsSortableField(sorter.Field) {
		sorter.Field = domain.DefaultSorter().Field
	}

	direction := "DESC"
	if sorter.IsAscending() {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts
		ORDER BY %s %s, id %s
		LIMIT ? OFFSET ?
	`, postColumns, sorter.Field, direction, direction)

	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, limit)
	for rows.Next() {
		row, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

const insertPostQuery = `
	INSERT INTO posts (title, content, author, published, published_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// InsertPost stores a new post and returns its generated ID
func (r *SQLitePostRepository) InsertPost(ctx context.Context, p *domain.Post) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("post cannot be nil")
	}
	if p.ID != 0 {
		return 0, fmt.Errorf("post %d is already persisted", p.ID)
	}

	var id int64
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		res, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, insertPostQuery,
			p.Title,
			p.Content,
			p.Author,
			p.Published,
			nullableTime(p.PublishedAt),
			p.CreatedAt,
			nullableTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted post id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

const updatePostQuery = `
	UPDATE posts
	SET title = ?, content = ?, author = ?, published = ?, published_at = ?, updated_at = ?
	WHERE id = ?
`

// UpdatePost overwrites the editable columns of an existing post.
// created_at is never touched.
func (r *SQLitePostRepository) UpdatePost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, updatePostQuery,
		p.Title,
		p.Content,
		p.Author,
		p.Published,
		nullableTime(p.PublishedAt),
		nullableTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	return requireAffected(res, p.ID)
}

const deletePostQuery = `DELETE FROM posts WHERE id = ?`

// DeletePost removes a post row
func (r *SQLitePostRepository) DeletePost(ctx context.Context, id int64) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, deletePostQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return requireAffected(res, id)
}

const publishPostQuery = `
	UPDATE posts
	SET published = 1, published_at = ?, updated_at = ?
	WHERE id = ?
`

const unpublishPostQuery = `
	UPDATE posts
	SET published = 0, published_at = NULL, updated_at = ?
	WHERE id = ?
`

// Publish flags a post as published at the given time
func (r *SQLitePostRepository) Publish(ctx context.Context, postID int64, at time.Time) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, publishPostQuery, at, at, postID)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}

	return requireAffected(res, postID)
}

// Unpublish clears the published flag and timestamp for a post
func (r *SQLitePostRepository) Unpublish(ctx context.Context, postID int64, at time.Time) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, unpublishPostQuery, at, postID)
	if err != nil {
		return fmt.Errorf("failed to unpublish post: %w", err)
	}

	return requireAffected(res, postID)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrPostNotFound, id)
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*postRow, error) {
	var row postRow
	err := s.Scan(
		&row.ID,
		&row.Title,
		&row.Content,
		&row.Author,
		&row.Published,
		&row.PublishedAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// postRow is a private struct used to scan database rows
// It uses sql.NullTime to handle nullable timestamp fields
type postRow struct {
	ID          int64        `db:"id"`
	Title       string       `db:"title"`
	Content     string       `db:"content"`
	Author      string       `db:"author"`
	Published   bool         `db:"published"`
	PublishedAt sql.NullTime `db:"published_at"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        pr.ID,
		Title:     pr.Title,
		Content:   pr.Content,
		Author:    pr.Author,
		Published: pr.Published,
	}

	if pr.PublishedAt.Valid {
		post.PublishedAt = pr.PublishedAt.Time
	}
	if pr.CreatedAt.Valid {
		post.CreatedAt = pr.CreatedAt.Time
	}
	if pr.UpdatedAt.Valid {
		post.UpdatedAt = pr.UpdatedAt.Time
	}

	return post
}
