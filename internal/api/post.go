package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/falco-social/falco/internal/service"
)

// PostHandler exposes the post listing, publishing and engagement routes
type PostHandler struct {
	posts *service.PostService
	mw    *Middleware
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *service.PostService, mw *Middleware) *PostHandler {
	return &PostHandler{posts: posts, mw: mw}
}

// Register registers the handler's routes on the given group
func (h *PostHandler) Register(group *gin.RouterGroup) {
	group.GET("", h.mw.OptionalAuth(), h.list)
	group.GET("/new", h.mw.OptionalAuth(), h.list)
	group.GET("/feed", h.mw.RequireAuth(), h.feed)
	group.GET("/saved", h.mw.RequireAuth(), h.saved)
	group.GET("/:id", h.mw.OptionalAuth(), h.get)
	group.POST("", h.mw.RequireAuth(), h.create)
	group.DELETE("/:id", h.mw.RequireAuth(), h.delete)
	group.PUT("/like/:id", h.mw.RequireAuth(), h.toggleLike)
	group.PUT("/save/:id", h.mw.RequireAuth(), h.toggleSave)
}

// listOptions maps the listing query parameters onto the filter set
func listOptions(c *gin.Context) service.ListOptions {
	opts := service.ListOptions{
		Tags:   c.QueryArray("tags[]"),
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
		Before: queryTimestamp(c.Query("t")),
	}
	if len(opts.Tags) == 0 {
		opts.Tags = c.QueryArray("tags")
	}
	opts.Page = queryPage(c)
	opts.AuthorID, _ = strconv.ParseInt(c.Query("user_id"), 10, 64)
	return opts
}

func (h *PostHandler) list(c *gin.Context) {
	set, err := h.posts.List(c.Request.Context(), listOptions(c), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *PostHandler) feed(c *gin.Context) {
	set, err := h.posts.Feed(c.Request.Context(), viewerID(c), queryPage(c), queryTimestamp(c.Query("t")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *PostHandler) saved(c *gin.Context) {
	set, err := h.posts.Saved(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *PostHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) create(c *gin.Context) {
	var in service.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBinding(c, err)
		return
	}
	post, err := h.posts.Create(c.Request.Context(), in, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *PostHandler) toggleLike(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.posts.ToggleLike(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *PostHandler) toggleSave(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.posts.ToggleSave(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
