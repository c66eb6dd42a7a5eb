package engagement

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Handler handles engagement HTTP requests.
type Handler struct {
	counter Counter
	limiter *rateLimiter
}

// NewHandler creates an engagement handler over a counter.
// The endpoints are rate-limited to 60 requests per IP per minute.
func NewHandler(counter Counter) *Handler {
	return &Handler{
		counter: counter,
		limiter: newRateLimiter(60, time.Minute),
	}
}

// RegisterRoutes mounts the engagement endpoints on a route group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.Like)
	g.POST("/posts/:id/view", h.View)
}

// LikeRequest is the expected request body for the like endpoint.
type LikeRequest struct {
	Action string `json:"action"`
}

// Like toggles a post's like counter in the direction the client asks for.
// The client tracks whether it already liked the post; the server only
// guarantees atomicity and the zero floor.
func (h *Handler) Like(c echo.Context) error {
	if !h.limiter.allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"success": false,
			"message": "Too many requests",
		})
	}

	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	id := c.Param("id")
	var (
		likes int
		err   error
	)
	switch req.Action {
	case "like":
		likes, err = h.counter.LikePost(id)
	case "unlike":
		likes, err = h.counter.UnlikePost(id)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Invalid action",
		})
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"message": "Post not found",
			})
		}
		log.Error().Err(err).Str("post_id", id).Msg("failed to update likes")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"newLikes": likes,
	})
}

// View increments a post's view counter.
func (h *Handler) View(c echo.Context) error {
	if !h.limiter.allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"success": false,
			"message": "Too many requests",
		})
	}

	id := c.Param("id")
	views, err := h.counter.ViewPost(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"message": "Post not found",
			})
		}
		log.Error().Err(err).Str("post_id", id).Msg("failed to update views")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"newViews": views,
	})
}
