package inkpost

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func (a *App) handleHome(c echo.Context) error {
	rc := a.reqContext(c)
	page := ParsePage(c.QueryParam("page"))
	filter := Filter{Title: rc.SearchQuery}

	total, err := a.Store.CountPosts(filter)
	if err != nil {
		return err
	}
	pg := Paginate(page, a.Config.PageSize, total)
	posts, err := a.Store.ListPosts(filter, pg.Skip, pg.Limit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(posts, pg, rc))
}

func (a *App) handlePostDetail(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, flashError, "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return err
	}
	return Render(c, a.Views.PostDetail(post, a.reqContext(c)))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.reqContext(c)))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := strings.Join([]string{
		"User-agent: *",
		"Disallow: /admin",
		"Disallow: /auth",
		"Sitemap: " + BuildURL(a.Config.URL, "/sitemap.xml"),
		"",
	}, "\n")
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.reqContext(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.reqContext(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
