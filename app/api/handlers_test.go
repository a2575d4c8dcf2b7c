package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/svirin/newswatch/app/database"
	"github.com/svirin/newswatch/app/dedup"
	"github.com/svirin/newswatch/app/sources"
	"github.com/svirin/newswatch/app/tasks"
)

type fakePostRepo struct {
	count int
	fail  bool
}

func (r *fakePostRepo) RecordPost(ctx context.Context, source, link, body, fingerprint string) error {
	return nil
}

func (r *fakePostRepo) RecentPosts(ctx context.Context, limit int) ([]database.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) GetPostCount(ctx context.Context) (int, error) {
	if r.fail {
		return 0, fmt.Errorf("database unavailable")
	}
	return r.count, nil
}

func newTestServer(t *testing.T, repo database.PostRepository) (*httptest.Server, *dedup.Cache, *tasks.Registry) {
	t.Helper()

	cache := dedup.NewCache(50, 50)
	registry := tasks.NewRegistry()
	configCache := sources.NewConfigCache(t.TempDir())

	handler := NewHandler(configCache, repo, cache, registry, "test")
	server := httptest.NewServer(NewServer(handler))
	t.Cleanup(server.Close)

	return server, cache, registry
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestGetHealth(t *testing.T) {
	server, _, _ := newTestServer(t, &fakePostRepo{})

	body := getJSON(t, server.URL+"/health")

	if body["status"] != "ok" {
		t.Errorf("Expected ok status, got %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("Expected version test, got %v", body["version"])
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}

func TestGetStats(t *testing.T) {
	server, cache, registry := newTestServer(t, &fakePostRepo{count: 7})

	registry.Add("lenta", "rss")
	registry.RecordPoll("lenta", tasks.PollCounts{Admitted: 2})
	cache.MarkPosted("новость")

	body := getJSON(t, server.URL+"/stats")

	if body["dedup_cache_size"] != float64(1) {
		t.Errorf("Expected cache size 1, got %v", body["dedup_cache_size"])
	}
	if body["delivered_posts"] != float64(7) {
		t.Errorf("Expected 7 delivered posts, got %v", body["delivered_posts"])
	}

	srcs, ok := body["sources"].([]any)
	if !ok || len(srcs) != 1 {
		t.Fatalf("Expected one source status, got %v", body["sources"])
	}
	src := srcs[0].(map[string]any)
	if src["name"] != "lenta" || src["healthy"] != true {
		t.Errorf("Unexpected source status: %v", src)
	}
}

func TestGetStatsSurvivesRepoFailure(t *testing.T) {
	server, _, _ := newTestServer(t, &fakePostRepo{fail: true})

	body := getJSON(t, server.URL+"/stats")

	if _, ok := body["delivered_posts"]; ok {
		t.Error("Expected delivered_posts to be omitted when the repository fails")
	}
}

func TestRootEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, &fakePostRepo{})

	body := getJSON(t, server.URL+"/")

	if body["service"] != "newswatch" {
		t.Errorf("Expected service name, got %v", body["service"])
	}
}

func TestFavicon(t *testing.T) {
	server, _, _ := newTestServer(t, &fakePostRepo{})

	resp, err := http.Get(server.URL + "/favicon.ico")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}
