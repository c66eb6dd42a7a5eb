// Package inkpost is a single-author blog publishing platform built with Go,
// Echo, and templ. It provides post authoring with image attachments, a
// paginated and searchable public listing, like/view engagement counters,
// and an admin dashboard out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// inkpost handles the handler logic, middleware, storage, and attachment
// lifecycle.
package inkpost

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/eringen/inkpost/engagement"
)

// ViewFuncs holds user-provided templ components that the platform calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates, including how markdown
// content is rendered.
type ViewFuncs struct {
	Home        func(posts []Post, pg Pagination, rc ReqContext) templ.Component
	PostDetail  func(post Post, rc ReqContext) templ.Component
	About       func(rc ReqContext) templ.Component
	Login       func(rc ReqContext) templ.Component
	Dashboard   func(posts []Post, rc ReqContext) templ.Component
	PostForm    func(post *Post, rc ReqContext) templ.Component
	NotFound    func(rc ReqContext) templ.Component
	ServerError func(rc ReqContext) templ.Component
}

// App is the central inkpost application. It wires together the store, the
// upload service, the authoring workflow, handlers, middleware, and the
// user-provided templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Uploads  *UploadService
	Workflow *Workflow
	Cache    *FeedCache
	Views    ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new inkpost App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, bootstraps the admin credential, sets up
// middleware and routes, and starts the server. Failure to open the store is
// the only fatal startup error.
func (a *App) Start() error {
	if a.Config.AdminUsername == "" || a.Config.AdminPassword == "" {
		return fmt.Errorf("inkpost: AdminUsername and AdminPassword are required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("inkpost: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkpost: init store: %w", err)
	}
	a.Store = store

	if err := a.bootstrapAdmin(); err != nil {
		return fmt.Errorf("inkpost: bootstrap admin: %w", err)
	}

	a.Uploads = NewUploadService(a.Config.UploadsDir)
	a.Workflow = NewWorkflow(a.Store, a.Uploads)
	a.Cache = NewFeedCache(a.Store, a.Config.FeedCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	log.Info().Str("addr", a.Config.Addr).Msg("starting inkpost server")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded client assets implementing the like/view idempotence guard.
	// They are served under /public/ and fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/likes.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/views.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets and the uploaded images.
	e.Static("/public", a.staticDir)
	e.Static(uploadsPrefix, a.Config.UploadsDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/:id", a.handlePostDetail)
	e.GET("/about", a.handleAbout)

	// Auth routes
	auth := e.Group("/auth")
	auth.GET("/login", a.handleLoginForm)
	auth.POST("/login", a.handleLogin)
	auth.GET("/logout", a.handleLogout)

	// Admin routes, gated behind a valid session.
	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("/dashboard", a.handleDashboard)
	admin.GET("/posts/new", a.handleNewPostForm)
	admin.POST("/posts", a.handleCreatePost)
	admin.GET("/posts/:id/edit", a.handleEditPostForm)
	admin.PUT("/posts/:id", a.handleUpdatePost)
	admin.DELETE("/posts/:id", a.handleDeletePost)

	// Engagement API
	api := e.Group("/api")
	engagement.NewHandler(a.Store).RegisterRoutes(api)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Uploads != nil {
		a.Uploads.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal().Str("key", key).Msg("required environment variable is not set")
	}
	return v
}
