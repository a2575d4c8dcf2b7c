package database

import "time"

// Post is one delivered message in the post log.
type Post struct {
	ID          int64
	Source      string
	Link        string
	Body        string
	Fingerprint string
	SentAt      time.Time
}
