package handlers

import (
	"net/http"

	"devconnector/services"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/users
func (h *Handlers) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.Accounts.Register(ctx, req)
	if err != nil {
		respondError(c, "Register", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Login - POST /api/auth
func (h *Handlers) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.Accounts.Login(ctx, req)
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetAuthUser - GET /api/auth
func (h *Handlers) GetAuthUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.Accounts.CurrentUser(ctx, actor(c))
	if err != nil {
		respondError(c, "GetAuthUser", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
