package inkpost

import (
	"testing"
	"time"
)

func TestFeedCacheServesAndInvalidates(t *testing.T) {
	s := setupTestStore(t)
	mustCreatePost(t, s, "cached")
	cache := NewFeedCache(s, time.Minute)

	posts, err := cache.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len = %d, want 1", len(posts))
	}

	// A write the cache has not seen yet stays invisible until invalidation.
	mustCreatePost(t, s, "newer")
	posts, err = cache.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len = %d, want 1 (stale until invalidated)", len(posts))
	}

	cache.Invalidate()
	posts, err = cache.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2 after invalidation", len(posts))
	}
	if posts[0].Title != "newer" {
		t.Errorf("first post = %q, want newest first", posts[0].Title)
	}
}

func TestFeedCacheTTLExpiry(t *testing.T) {
	s := setupTestStore(t)
	mustCreatePost(t, s, "one")
	cache := NewFeedCache(s, 50*time.Millisecond)

	if _, err := cache.ListPosts(); err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	mustCreatePost(t, s, "two")

	time.Sleep(80 * time.Millisecond)
	posts, err := cache.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2 after TTL expiry", len(posts))
	}
}
