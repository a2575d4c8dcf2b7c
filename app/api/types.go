package api

import (
	"github.com/svirin/newswatch/app/database"
	"github.com/svirin/newswatch/app/dedup"
	"github.com/svirin/newswatch/app/sources"
	"github.com/svirin/newswatch/app/tasks"
)

type Handler struct {
	configCache *sources.ConfigCache
	postRepo    database.PostRepository
	cache       *dedup.Cache
	registry    *tasks.Registry
	version     string
}
