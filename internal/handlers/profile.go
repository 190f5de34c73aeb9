package handlers

import (
	"net/http"
	"strings"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/middleware"
	"todos-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profile      *services.ProfileService
	cookieSecure bool
	logger       *zap.Logger
}

func NewProfileHandler(profile *services.ProfileService, cookieSecure bool, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profile: profile, cookieSecure: cookieSecure, logger: logger}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	profile, err := h.profile.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

// UpdateProfile accepts JSON for field changes, or multipart form data
// when a new profile picture is included. Password fields are read
// from the body only.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	var in services.UpdateProfileInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, err := h.parseMultipart(c)
		if err != nil {
			respondBadRequest(c, "Invalid form data")
			return
		}
		in = parsed
	} else {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
		in = services.UpdateProfileInput{
			Name:            req.Name,
			Email:           req.Email,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		}
	}

	updated, err := h.profile.Update(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    updated,
	})
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	if err := h.profile.Delete(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User and associated data deleted successfully",
	})
}

func (h *ProfileHandler) parseMultipart(c *gin.Context) (services.UpdateProfileInput, error) {
	var in services.UpdateProfileInput

	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("email"); ok {
		in.Email = &v
	}
	if v, ok := c.GetPostForm("currentPassword"); ok {
		in.CurrentPassword = &v
	}
	if v, ok := c.GetPostForm("newPassword"); ok {
		in.NewPassword = &v
	}

	file, err := c.FormFile("image")
	if err == nil {
		opened, err := file.Open()
		if err != nil {
			return in, err
		}
		// Closed when the request body is released; the upload reads
		// it fully within this request.
		in.Image = &services.ImageUpload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Body:        opened,
		}
	} else if err != http.ErrMissingFile {
		return in, err
	}

	return in, nil
}

func (h *ProfileHandler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", h.cookieSecure, true)
}
