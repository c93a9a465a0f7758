package handlers

import (
	"errors"
	"log"
	"net/http"

	"devconnector/services"

	"github.com/gin-gonic/gin"
)

// GetMyProfile - GET /api/profile/me
func (h *Handlers) GetMyProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.GetOwnProfile(ctx, actor(c))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": services.Message(err)})
		return
	}
	if err != nil {
		respondError(c, "GetMyProfile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile - POST /api/profile
func (h *Handlers) UpsertProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.UpsertProfile(ctx, actor(c), req)
	if err != nil {
		respondError(c, "UpsertProfile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfiles - GET /api/profile
func (h *Handlers) GetProfiles(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profiles, err := h.Profiles.ListProfiles(ctx)
	if err != nil {
		respondError(c, "GetProfiles", err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfileByUser - GET /api/profile/user/:user_id
func (h *Handlers) GetProfileByUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.GetProfileByUser(ctx, c.Param("user_id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": services.Message(err)})
		return
	}
	if err != nil {
		respondError(c, "GetProfileByUser", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteAccount - DELETE /api/profile
func (h *Handlers) DeleteAccount(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Profiles.DeleteOwnAccount(ctx, actor(c)); err != nil {
		respondError(c, "DeleteAccount", err)
		return
	}
	log.Printf("[DeleteAccount] user %s deleted", actor(c))
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

// AddExperience - PUT /api/profile/experience
func (h *Handlers) AddExperience(c *gin.Context) {
	var req services.ExperienceInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.AddExperience(ctx, actor(c), req)
	if err != nil {
		respondError(c, "AddExperience", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteExperience - DELETE /api/profile/experience/:exp_id
func (h *Handlers) DeleteExperience(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.RemoveExperience(ctx, actor(c), c.Param("exp_id"))
	if err != nil {
		respondError(c, "DeleteExperience", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddEducation - PUT /api/profile/education
func (h *Handlers) AddEducation(c *gin.Context) {
	var req services.EducationInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.AddEducation(ctx, actor(c), req)
	if err != nil {
		respondError(c, "AddEducation", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteEducation - DELETE /api/profile/education/:edu_id
func (h *Handlers) DeleteEducation(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Profiles.RemoveEducation(ctx, actor(c), c.Param("edu_id"))
	if err != nil {
		respondError(c, "DeleteEducation", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetGithubRepos - GET /api/profile/github/:username
func (h *Handlers) GetGithubRepos(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := requestContext(c)
	defer cancel()

	repos, err := h.Profiles.LookupGithubRepos(ctx, username)
	if err != nil {
		log.Printf("[GetGithubRepos] lookup for %q failed: %v", username, err)
		respondError(c, "GetGithubRepos", err)
		return
	}
	c.JSON(http.StatusOK, repos)
}
