package inkpost

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// bootstrapAdmin seeds the configured admin account on first start. An
// existing account is left untouched so a changed env password never
// silently rotates credentials.
func (a *App) bootstrapAdmin() error {
	_, err := a.Store.GetAdmin(a.Config.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := a.Store.CreateAdmin(a.Config.AdminUsername, string(hash)); err != nil {
		return err
	}
	log.Info().Str("username", a.Config.AdminUsername).Msg("default admin user created")
	return nil
}

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
	}
	return Render(c, a.Views.Login(a.reqContext(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}

	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		addFlash(c, flashError, "Please fill in all fields")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	admin, err := a.Store.GetAdmin(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.loginLimiter.Record(c.RealIP())
			addFlash(c, flashError, "Incorrect username or password")
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		a.loginLimiter.Record(c.RealIP())
		addFlash(c, flashError, "Incorrect username or password")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	if err := setAdminSession(c); err != nil {
		return err
	}
	addFlash(c, flashSuccess, "You are now logged in")
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func (a *App) handleLogout(c echo.Context) error {
	// Drop the auth flag but keep the session alive so the goodbye flash
	// survives the redirect.
	if err := clearAdminSession(c); err != nil {
		return err
	}
	addFlash(c, flashSuccess, "You are logged out")
	return c.Redirect(http.StatusSeeOther, "/")
}
