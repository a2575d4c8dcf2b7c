package database

import "context"

type PostRepository interface {
	RecordPost(ctx context.Context, source, link, body, fingerprint string) error
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
	GetPostCount(ctx context.Context) (int, error)
}
