package inkpost

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// createdAtLayout is a fixed-width UTC timestamp so that lexicographic order
// in SQLite matches chronological order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps a SQLite database and provides CRUD, query, and counter
// operations for posts, plus the admin credential table.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    content TEXT NOT NULL,
    image_url TEXT,
    likes INTEGER NOT NULL DEFAULT 0,
    views INTEGER NOT NULL DEFAULT 0,
    author TEXT NOT NULL DEFAULT 'Admin',
    location TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

CREATE TABLE IF NOT EXISTS admins (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// Filter narrows post listings. An empty Title matches all posts; a non-empty
// Title is matched as a case-insensitive substring of the post title.
type Filter struct {
	Title string
}

func (f Filter) where() (string, []any) {
	q := strings.TrimSpace(f.Title)
	if q == "" {
		return "", nil
	}
	return " WHERE instr(lower(title), lower(?)) > 0", []any{q}
}

// PostUpdate describes a partial update. Nil fields are left unchanged.
// ImageURL uses sql.NullString so callers can distinguish "leave unchanged"
// (nil) from "clear the attachment" (Valid=false).
type PostUpdate struct {
	Title       *string
	Description *string
	Content     *string
	Author      *string
	Location    *string
	ImageURL    *sql.NullString
}

const postColumns = "id, title, description, content, image_url, likes, views, author, location, created_at"

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	var imageURL, location sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Content, &imageURL,
		&p.Likes, &p.Views, &p.Author, &location, &createdAt); err != nil {
		return Post{}, err
	}
	p.ImageURL = imageURL.String
	p.Location = location.String
	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return Post{}, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// validateRequired rejects empty required fields after trimming.
func validateRequired(title, description, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || strings.TrimSpace(content) == "" {
		return &ValidationError{Message: "Please fill in all required fields (title, description, content)."}
	}
	return nil
}

// CreatePost inserts a new post with a fresh id, zeroed counters, and the
// creation timestamp. Required fields are validated after trimming.
func (s *Store) CreatePost(in PostInput, imageURL string) (Post, error) {
	if err := validateRequired(in.Title, in.Description, in.Content); err != nil {
		return Post{}, err
	}
	p := Post{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Content:     in.Content,
		ImageURL:    imageURL,
		Author:      in.Author,
		Location:    in.Location,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Content, nullIfEmpty(p.ImageURL),
		p.Author, nullIfEmpty(p.Location), p.CreatedAt.Format(createdAtLayout))
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// GetPost returns a single post by id, or ErrNotFound.
func (s *Store) GetPost(id string) (Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// UpdatePost merges the given partial update into an existing post and
// returns the updated record. Required fields present in the update are
// re-validated. Counter columns are never touched, so concurrent like/view
// increments are not overwritten by an edit.
func (s *Store) UpdatePost(id string, u PostUpdate) (Post, error) {
	p, err := s.GetPost(id)
	if err != nil {
		return Post{}, err
	}
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		p.Description = strings.TrimSpace(*u.Description)
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL.String
		if !u.ImageURL.Valid {
			p.ImageURL = ""
		}
	}
	if err := validateRequired(p.Title, p.Description, p.Content); err != nil {
		return Post{}, err
	}
	_, err = s.db.Exec(`UPDATE posts SET title = ?, description = ?, content = ?, image_url = ?, author = ?, location = ? WHERE id = ?`,
		p.Title, p.Description, p.Content, nullIfEmpty(p.ImageURL), p.Author, nullIfEmpty(p.Location), id)
	if err != nil {
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// DeletePost removes a post by id and returns the deleted record so callers
// can clean up its attachment. Returns ErrNotFound for an unknown id.
func (s *Store) DeletePost(id string) (Post, error) {
	p, err := s.GetPost(id)
	if err != nil {
		return Post{}, err
	}
	if _, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return Post{}, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}

// ListPosts returns posts matching the filter, newest first, honoring the
// skip/limit window. A negative limit returns everything after skip.
func (s *Store) ListPosts(f Filter, skip, limit int) ([]Post, error) {
	where, args := f.where()
	args = append(args, limit, skip)
	// rowid breaks ties between posts created in the same instant.
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts`+where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts matching the filter.
func (s *Store) CountPosts(f Filter) (int, error) {
	where, args := f.where()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`+where, args...).Scan(&n)
	return n, err
}

// LikePost atomically increments the like counter and returns the new count,
// or ErrNotFound. A single UPDATE keeps concurrent likes from losing updates.
func (s *Store) LikePost(id string) (int, error) {
	var likes int
	err := s.db.QueryRow(`UPDATE posts SET likes = likes + 1 WHERE id = ? RETURNING likes`, id).Scan(&likes)
	return likes, err
}

// UnlikePost atomically decrements the like counter, flooring at zero, and
// returns the new count, or ErrNotFound.
func (s *Store) UnlikePost(id string) (int, error) {
	var likes int
	err := s.db.QueryRow(`UPDATE posts SET likes = MAX(likes - 1, 0) WHERE id = ? RETURNING likes`, id).Scan(&likes)
	return likes, err
}

// ViewPost atomically increments the view counter and returns the new count,
// or ErrNotFound.
func (s *Store) ViewPost(id string) (int, error) {
	var views int
	err := s.db.QueryRow(`UPDATE posts SET views = views + 1 WHERE id = ? RETURNING views`, id).Scan(&views)
	return views, err
}

// GetAdmin returns the admin credential for username, or ErrNotFound.
func (s *Store) GetAdmin(username string) (Admin, error) {
	var a Admin
	var createdAt string
	err := s.db.QueryRow(`SELECT username, password_hash, created_at FROM admins WHERE username = ?`, username).
		Scan(&a.Username, &a.PasswordHash, &createdAt)
	if err != nil {
		return Admin{}, err
	}
	if t, err := time.Parse(createdAtLayout, createdAt); err == nil {
		a.CreatedAt = t
	}
	return a, nil
}

// CreateAdmin inserts the bootstrap admin credential.
func (s *Store) CreateAdmin(username, passwordHash string) error {
	_, err := s.db.Exec(`INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, time.Now().UTC().Format(createdAtLayout))
	return err
}
