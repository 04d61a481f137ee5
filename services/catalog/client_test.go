package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		Language: "en",
		HTTPC:    srv.Client(),
	})
}

func TestGetMovie_Success(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en" {
			t.Errorf("unexpected language %q", got)
		}
		w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,
			"genres":[{"name":"Drama"}],"original_language":"en"}`))
	}))

	p, err := c.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if p.Title != "Fight Club" || p.Runtime != 139 {
		t.Errorf("unexpected payload %+v", p)
	}
	if len(p.Genres) != 1 || p.Genres[0].Name != "Drama" {
		t.Errorf("unexpected genres %+v", p.Genres)
	}
}

func TestGetMovie_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":550,"title":"Fight Club"}`))
	}))

	p, err := c.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("GetMovie failed after retries: %v", err)
	}
	if p.Title != "Fight Club" {
		t.Errorf("unexpected payload %+v", p)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGetMovie_NotFoundFailsFast(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such movie", http.StatusNotFound)
	}))

	if _, err := c.GetMovie(context.Background(), 999); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt for 404, got %d", calls.Load())
	}
}

func TestGetMovie_ContextCancellation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.GetMovie(ctx, 550); err == nil {
		t.Fatal("expected error once the deadline passed")
	}
}

func TestSeasonEpisodes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399/season/1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"episodes":[
			{"id":63056,"episode_number":1,"name":"Winter Is Coming","runtime":62},
			{"id":63057,"episode_number":2,"name":"The Kingsroad","runtime":56}
		]}`))
	}))

	eps, err := c.SeasonEpisodes(context.Background(), 1399, 1)
	if err != nil {
		t.Fatalf("SeasonEpisodes failed: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(eps))
	}
	if eps[0].Name != "Winter Is Coming" || eps[1].EpisodeNumber != 2 {
		t.Errorf("unexpected episodes %+v", eps)
	}
}

func TestSearchMulti(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "fight club" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`{"results":[
			{"id":550,"media_type":"movie","title":"Fight Club"},
			{"id":1399,"media_type":"tv","name":"Game of Thrones"}
		]}`))
	}))

	results, err := c.SearchMulti(context.Background(), "fight club")
	if err != nil {
		t.Fatalf("SearchMulti failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].DisplayTitle() != "Fight Club" || results[1].DisplayTitle() != "Game of Thrones" {
		t.Errorf("unexpected results %+v", results)
	}
}
