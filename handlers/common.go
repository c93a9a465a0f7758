package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"devconnector/middleware"
	"devconnector/services"

	"github.com/gin-gonic/gin"
)

// Upper bound for the store work of a single request.
const requestTimeout = 10 * time.Second

// Handlers serves the REST API on top of the services.
type Handlers struct {
	Accounts *services.AccountService
	Profiles *services.ProfileService
	Posts    *services.PostService
}

func New(accounts *services.AccountService, profiles *services.ProfileService, posts *services.PostService) *Handlers {
	return &Handlers{Accounts: accounts, Profiles: profiles, Posts: posts}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func actor(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []services.FieldError{{Msg: "Invalid request body"}}})
		return false
	}
	return true
}

// respondError writes the status for err; anything unclassified is logged and
// reported as a generic 500.
func respondError(c *gin.Context, tag string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusNotFound, gin.H{"msg": services.Message(err)})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": services.Message(err)})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"msg": services.Message(err)})
	default:
		log.Printf("[%s] request=%s error: %v", tag, middleware.RequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
	}
}
