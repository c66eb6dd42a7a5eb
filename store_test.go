package inkpost

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreatePost(t *testing.T, s *Store, title string) Post {
	t.Helper()
	p, err := s.CreatePost(PostInput{
		Title:       title,
		Description: "Description of " + title,
		Content:     "Content of " + title,
		Author:      "Admin",
	}, "")
	if err != nil {
		t.Fatalf("CreatePost(%q) failed: %v", title, err)
	}
	return p
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(PostInput{
		Title:       "First Post",
		Description: "A short description",
		Content:     "Some longer content",
		Author:      "Alice",
		Location:    "Lisbon",
	}, "/uploads/postImage-123.png")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}
	if created.Likes != 0 || created.Views != 0 {
		t.Errorf("counters = %d/%d, want 0/0", created.Likes, created.Views)
	}

	got, err := s.GetPost(created.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "First Post" {
		t.Errorf("Title = %q, want %q", got.Title, "First Post")
	}
	if got.Author != "Alice" {
		t.Errorf("Author = %q, want %q", got.Author, "Alice")
	}
	if got.Location != "Lisbon" {
		t.Errorf("Location = %q, want %q", got.Location, "Lisbon")
	}
	if got.ImageURL != "/uploads/postImage-123.png" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestCreatePostValidation(t *testing.T) {
	s := setupTestStore(t)

	cases := []PostInput{
		{Title: "", Description: "d", Content: "c"},
		{Title: "t", Description: "", Content: "c"},
		{Title: "t", Description: "d", Content: ""},
		{Title: "   ", Description: "d", Content: "c"},
	}
	for _, in := range cases {
		if _, err := s.CreatePost(in, ""); err == nil {
			t.Errorf("CreatePost(%+v) should fail validation", in)
		} else {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("CreatePost(%+v) error = %v, want ValidationError", in, err)
			}
		}
	}

	n, err := s.CountPosts(Filter{})
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid inputs left %d records behind", n)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePostPartialMerge(t *testing.T) {
	s := setupTestStore(t)
	p := mustCreatePost(t, s, "Original")

	if _, err := s.LikePost(p.ID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}

	title := "Updated Title"
	got, err := s.UpdatePost(p.ID, PostUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Description != p.Description || got.Content != p.Content {
		t.Error("unspecified fields should be unchanged")
	}

	// Counters survive an edit.
	reloaded, err := s.GetPost(p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if reloaded.Likes != 1 {
		t.Errorf("Likes = %d, want 1", reloaded.Likes)
	}
}

func TestUpdatePostImageTransitions(t *testing.T) {
	s := setupTestStore(t)
	p := mustCreatePost(t, s, "With Image")

	set := nullIfEmpty("/uploads/postImage-1.png")
	got, err := s.UpdatePost(p.ID, PostUpdate{ImageURL: &set})
	if err != nil {
		t.Fatalf("UpdatePost set image failed: %v", err)
	}
	if got.ImageURL != "/uploads/postImage-1.png" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}

	// nil pointer leaves it alone.
	got, err = s.UpdatePost(p.ID, PostUpdate{})
	if err != nil {
		t.Fatalf("UpdatePost no-op failed: %v", err)
	}
	if got.ImageURL != "/uploads/postImage-1.png" {
		t.Errorf("ImageURL = %q, want unchanged", got.ImageURL)
	}

	// Valid=false clears it.
	cleared := nullIfEmpty("")
	got, err = s.UpdatePost(p.ID, PostUpdate{ImageURL: &cleared})
	if err != nil {
		t.Fatalf("UpdatePost clear image failed: %v", err)
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", got.ImageURL)
	}
}

func TestUpdatePostValidation(t *testing.T) {
	s := setupTestStore(t)
	p := mustCreatePost(t, s, "Valid")

	empty := "   "
	if _, err := s.UpdatePost(p.ID, PostUpdate{Title: &empty}); err == nil {
		t.Fatal("blanking the title should fail validation")
	}

	got, err := s.GetPost(p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Valid" {
		t.Errorf("Title = %q, record should be untouched", got.Title)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)
	title := "x"
	if _, err := s.UpdatePost("missing", PostUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePost error = %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	p, err := s.CreatePost(PostInput{Title: "t", Description: "d", Content: "c", Author: "Admin"}, "/uploads/postImage-9.gif")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	deleted, err := s.DeletePost(p.ID)
	if err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if deleted.ImageURL != "/uploads/postImage-9.gif" {
		t.Errorf("deleted record ImageURL = %q", deleted.ImageURL)
	}
	if _, err := s.GetPost(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.DeletePost(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePost = %v, want ErrNotFound", err)
	}
}

func TestListPostsOrderAndWindow(t *testing.T) {
	s := setupTestStore(t)
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		mustCreatePost(t, s, title)
	}

	all, err := s.ListPosts(Filter{}, 0, -1)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	// Newest first.
	if all[0].Title != "five" || all[4].Title != "one" {
		t.Errorf("order = %q ... %q, want five ... one", all[0].Title, all[4].Title)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Errorf("posts out of order at index %d", i)
		}
	}

	pageTwo, err := s.ListPosts(Filter{}, 2, 2)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(pageTwo) != 2 || pageTwo[0].Title != "three" || pageTwo[1].Title != "two" {
		t.Errorf("window = %+v, want [three two]", pageTwo)
	}

	past, err := s.ListPosts(Filter{}, 100, 2)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("out-of-range window returned %d posts", len(past))
	}
}

func TestSearchFilter(t *testing.T) {
	s := setupTestStore(t)
	mustCreatePost(t, s, "Categories of Birds")
	mustCreatePost(t, s, "Dogs and More")
	mustCreatePost(t, s, "The cat report")

	got, err := s.ListPosts(Filter{Title: "Cat"}, 0, -1)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("search 'Cat' matched %d posts, want 2", len(got))
	}

	n, err := s.CountPosts(Filter{Title: "Cat"})
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPosts = %d, want 2", n)
	}

	none, err := s.ListPosts(Filter{Title: "zebra"}, 0, -1)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search 'zebra' matched %d posts, want 0", len(none))
	}
}

func TestLikeUnlikeFloor(t *testing.T) {
	s := setupTestStore(t)
	p := mustCreatePost(t, s, "counter")

	likes, err := s.LikePost(p.ID)
	if err != nil || likes != 1 {
		t.Fatalf("LikePost = %d, %v; want 1", likes, err)
	}
	likes, err = s.UnlikePost(p.ID)
	if err != nil || likes != 0 {
		t.Fatalf("UnlikePost = %d, %v; want 0", likes, err)
	}
	// Unlike at zero stays at zero.
	likes, err = s.UnlikePost(p.ID)
	if err != nil || likes != 0 {
		t.Fatalf("UnlikePost at floor = %d, %v; want 0", likes, err)
	}

	if _, err := s.LikePost("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LikePost unknown id = %v, want ErrNotFound", err)
	}
}

func TestConcurrentViews(t *testing.T) {
	s := setupTestStore(t)
	p := mustCreatePost(t, s, "busy")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ViewPost(p.ID); err != nil {
				t.Errorf("ViewPost failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.GetPost(p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Views != n {
		t.Errorf("Views = %d, want %d (lost updates)", got.Views, n)
	}
}

func TestAdminCredentials(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.GetAdmin("admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAdmin on empty table = %v, want ErrNotFound", err)
	}
	if err := s.CreateAdmin("admin", "hash"); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	a, err := s.GetAdmin("admin")
	if err != nil {
		t.Fatalf("GetAdmin failed: %v", err)
	}
	if a.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q", a.PasswordHash)
	}
}
