package inkpost

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleDashboard(c echo.Context) error {
	posts, err := a.Store.ListPosts(Filter{}, 0, -1)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Dashboard(posts, a.reqContext(c)))
}

func (a *App) handleNewPostForm(c echo.Context) error {
	return Render(c, a.Views.PostForm(nil, a.reqContext(c)))
}

func (a *App) handleCreatePost(c echo.Context) error {
	in := postInputFromForm(c)
	file, err := formImage(c)
	if err != nil {
		return err
	}

	if _, err := a.Workflow.CreatePost(in, file); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			addFlash(c, flashError, verr.Message)
			return c.Redirect(http.StatusSeeOther, "/admin/posts/new")
		}
		addFlash(c, flashError, "Error creating post")
		return c.Redirect(http.StatusSeeOther, "/admin/posts/new")
	}

	a.Cache.Invalidate()
	addFlash(c, flashSuccess, "Post created successfully!")
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func (a *App) handleEditPostForm(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, flashError, "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		}
		return err
	}
	return Render(c, a.Views.PostForm(&post, a.reqContext(c)))
}

func (a *App) handleUpdatePost(c echo.Context) error {
	id := c.Param("id")
	in := postInputFromForm(c)
	file, err := formImage(c)
	if err != nil {
		return err
	}
	removeImage := c.FormValue("removeImage") == "true"

	if _, err := a.Workflow.UpdatePost(id, in, file, removeImage); err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, flashError, "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			addFlash(c, flashError, verr.Message)
			return c.Redirect(http.StatusSeeOther, "/admin/posts/"+id+"/edit")
		}
		addFlash(c, flashError, "Error updating post")
		return c.Redirect(http.StatusSeeOther, "/admin/posts/"+id+"/edit")
	}

	a.Cache.Invalidate()
	addFlash(c, flashSuccess, "Post updated successfully!")
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Workflow.DeletePost(c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, flashError, "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		}
		addFlash(c, flashError, "Error deleting post")
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
	}

	a.Cache.Invalidate()
	addFlash(c, flashSuccess, "Post deleted successfully!")
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func postInputFromForm(c echo.Context) PostInput {
	return PostInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Content:     c.FormValue("content"),
		Author:      c.FormValue("author"),
		Location:    c.FormValue("location"),
	}
}

// formImage returns the attached image, or nil when the field was left empty.
func formImage(c echo.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}
