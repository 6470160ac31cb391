package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/necatisahhin/zeroAiBackend/internal/middleware"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/service"
)

type profileUser struct {
	Email            string                  `json:"email"`
	Fullname         string                  `json:"fullname"`
	Role             models.UserRole         `json:"role"`
	IsActive         bool                    `json:"isActive"`
	SocialMediaLinks models.SocialMediaLinks `json:"socialMediaLinks"`
	Restaurants      []restaurantView        `json:"restaurants,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

type profileResponse struct {
	Message string      `json:"message"`
	User    profileUser `json:"user"`
}

func newProfileUser(user models.User) profileUser {
	return profileUser{
		Email:            user.Email,
		Fullname:         user.Fullname,
		Role:             user.Role,
		IsActive:         user.IsActive,
		SocialMediaLinks: user.SocialMediaLinks,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, failGetProfile)
		return
	}

	view := newProfileUser(user)
	view.Restaurants = make([]restaurantView, 0, len(user.Restaurants))
	for _, r := range user.Restaurants {
		view.Restaurants = append(view.Restaurants, newRestaurantView(r))
	}

	c.JSON(http.StatusOK, profileResponse{
		Message: "Profile retrieved successfully",
		User:    view,
	})
}

type updateProfileRequest struct {
	Fullname         *string                  `json:"fullname" binding:"omitnil,min=2,max=100"`
	SocialMediaLinks *socialMediaLinksRequest `json:"socialMediaLinks" binding:"omitnil"`
	IsActive         *bool                    `json:"is_active"`
	Role             *string                  `json:"role" binding:"omitnil,oneof=user admin premium elite"`
}

func (r *updateProfileRequest) normalize() {
	trimPtr(r.Fullname)
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := bindStrict(c, &req, "fullname", "socialMediaLinks", "is_active", "role"); err != nil {
		h.respondError(c, err, failUpdateProf)
		return
	}

	update := service.ProfileUpdate{
		Fullname:         req.Fullname,
		SocialMediaLinks: req.SocialMediaLinks.toModel(),
		IsActive:         req.IsActive,
	}
	if req.Role != nil {
		role, err := models.ParseUserRole(*req.Role)
		if err != nil {
			h.respondError(c, validationError("Invalid role"), failUpdateProf)
			return
		}
		update.Role = &role
	}

	userID, _ := middleware.CurrentUserID(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		h.respondError(c, err, failUpdateProf)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		Message: "Profile updated successfully",
		User:    newProfileUser(user),
	})
}
