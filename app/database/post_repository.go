package database

import (
	"context"
	"fmt"
	"time"
)

var _ PostRepository = (*PostRepositoryImpl)(nil)

// PostRepositoryImpl stores delivered messages so the duplicate cache can be
// re-seeded after a restart.
type PostRepositoryImpl struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) RecordPost(ctx context.Context, source, link, body, fingerprint string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (source, link, body, fingerprint, sent_at)
		VALUES (?, ?, ?, ?, ?)`,
		source, link, body, fingerprint, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record post: %w", err)
	}
	return nil
}

// RecentPosts returns the most recently delivered posts, newest first.
func (r *PostRepositoryImpl) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, link, body, fingerprint, sent_at FROM posts
		ORDER BY sent_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Source, &p.Link, &p.Body, &p.Fingerprint, &p.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (r *PostRepositoryImpl) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
