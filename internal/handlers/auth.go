package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/necatisahhin/zeroAiBackend/internal/middleware"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/service"
)

type socialMediaLinksRequest struct {
	YoutubeURL   *string `json:"youtubeUrl" binding:"omitnil,weburl"`
	InstagramURL *string `json:"instagramUrl" binding:"omitnil,weburl"`
	TwitterURL   *string `json:"twitterUrl" binding:"omitnil,weburl"`
	FacebookURL  *string `json:"facebookUrl" binding:"omitnil,weburl"`
	LinkedinURL  *string `json:"linkedinUrl" binding:"omitnil,weburl"`
}

func (r *socialMediaLinksRequest) toModel() *models.SocialMediaLinks {
	if r == nil {
		return nil
	}
	value := func(s *string) string {
		if s == nil {
			return ""
		}
		return strings.TrimSpace(*s)
	}
	return &models.SocialMediaLinks{
		YoutubeURL:   value(r.YoutubeURL),
		InstagramURL: value(r.InstagramURL),
		TwitterURL:   value(r.TwitterURL),
		FacebookURL:  value(r.FacebookURL),
		LinkedinURL:  value(r.LinkedinURL),
	}
}

type registerRequest struct {
	Fullname         string                   `json:"fullname" binding:"required,min=2,max=100"`
	Email            string                   `json:"email" binding:"required,email"`
	Password         string                   `json:"password" binding:"required,min=8,strongpassword"`
	SocialMediaLinks *socialMediaLinksRequest `json:"socialMediaLinks" binding:"omitnil"`
}

func (r *registerRequest) normalize() {
	r.Fullname = strings.TrimSpace(r.Fullname)
	r.Email = strings.TrimSpace(r.Email)
}

type registeredUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	CreatedAt time.Time `json:"createdAt"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := bindStrict(c, &req, "fullname", "email", "password", "socialMediaLinks"); err != nil {
		h.respondError(c, err, failRegister)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Fullname:         req.Fullname,
		Email:            req.Email,
		Password:         req.Password,
		SocialMediaLinks: req.SocialMediaLinks.toModel(),
	})
	if err != nil {
		h.respondError(c, err, failRegister)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User: registeredUser{
			ID:        user.ID,
			Email:     user.Email,
			Fullname:  user.Fullname,
			CreatedAt: user.CreatedAt,
		},
	})
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *credentialsRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type tokenResponse struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req credentialsRequest
	if err := bindStrict(c, &req, "email", "password"); err != nil {
		h.respondError(c, err, failLogin)
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, failLogin)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Message:      "Login successful",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// refreshRequest keeps the token untyped: a non-string value is reported as
// an invalid token rather than a validation failure.
type refreshRequest struct {
	RefreshToken any `json:"refreshToken"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindStrict(c, &req, "refreshToken"); err != nil {
		h.respondError(c, err, failRefresh)
		return
	}

	var token string
	switch v := req.RefreshToken.(type) {
	case nil:
	case string:
		token = v
	default:
		h.respondError(c, service.ErrInvalidRefreshToken, failRefresh)
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err, failRefresh)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Message:      "Token refreshed successfully",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type logoutResponse struct {
	Message       string `json:"message"`
	RevokedTokens int64  `json:"revokedTokens"`
}

func (h HandlerSet) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)

	revoked, err := h.sessions.Logout(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err, failLogout)
		return
	}

	c.JSON(http.StatusOK, logoutResponse{
		Message:       "Logout successful",
		RevokedTokens: revoked,
	})
}

func (h HandlerSet) LogoutAll(c *gin.Context) {
	var req credentialsRequest
	if err := bindStrict(c, &req, "email", "password"); err != nil {
		h.respondError(c, err, failLogoutAll)
		return
	}

	revoked, err := h.sessions.LogoutAll(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, failLogoutAll)
		return
	}

	c.JSON(http.StatusOK, logoutResponse{
		Message:       "Logout from all devices successful",
		RevokedTokens: revoked,
	})
}
