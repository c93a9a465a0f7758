package handlers

import (
	"net/http"

	"devconnector/services"

	"github.com/gin-gonic/gin"
)

// CreatePost - POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	var req services.TextInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.Posts.CreatePost(ctx, actor(c), req)
	if err != nil {
		respondError(c, "CreatePost", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetPosts - GET /api/posts
func (h *Handlers) GetPosts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.Posts.ListPosts(ctx)
	if err != nil {
		respondError(c, "GetPosts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost - GET /api/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.Posts.GetPost(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "GetPost", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost - DELETE /api/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Posts.DeletePost(ctx, actor(c), c.Param("id")); err != nil {
		respondError(c, "DeletePost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}

// LikePost - PUT /api/posts/like/:id
func (h *Handlers) LikePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	likes, err := h.Posts.LikePost(ctx, actor(c), c.Param("id"))
	if err != nil {
		respondError(c, "LikePost", err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// UnlikePost - PUT /api/posts/unlike/:id
func (h *Handlers) UnlikePost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	likes, err := h.Posts.UnlikePost(ctx, actor(c), c.Param("id"))
	if err != nil {
		respondError(c, "UnlikePost", err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// AddComment - POST /api/posts/comment/:id
func (h *Handlers) AddComment(c *gin.Context) {
	var req services.TextInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.Posts.AddComment(ctx, actor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, "AddComment", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment - DELETE /api/posts/comment/:id/:comment_id
func (h *Handlers) DeleteComment(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.Posts.RemoveComment(ctx, actor(c), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		respondError(c, "DeleteComment", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
