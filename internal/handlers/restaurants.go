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

type restaurantView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newRestaurantView(r models.Restaurant) restaurantView {
	return restaurantView{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type restaurantResponse struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Restaurant *restaurantView `json:"restaurant,omitempty"`
}

type createRestaurantRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Address     string  `json:"address" binding:"required,min=5,max=200"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitnil,phone"`
	Email       string  `json:"email" binding:"required,email"`
}

func (r *createRestaurantRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	trimPtr(r.PhoneNumber)
	r.Email = strings.TrimSpace(r.Email)
}

func (h HandlerSet) CreateRestaurant(c *gin.Context) {
	var req createRestaurantRequest
	if err := bindStrict(c, &req, "name", "address", "phoneNumber", "email"); err != nil {
		h.respondError(c, err, failCreateRestaurant)
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	restaurant, err := h.restaurants.Create(c.Request.Context(), userID, service.CreateRestaurantInput{
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		h.respondError(c, err, failCreateRestaurant)
		return
	}

	view := newRestaurantView(restaurant)
	c.JSON(http.StatusCreated, restaurantResponse{
		Code:       "RESTAURANT_CREATED",
		Message:    "Restaurant created successfully",
		Restaurant: &view,
	})
}

type updateRestaurantRequest struct {
	ID          string  `json:"id" binding:"required"`
	Name        *string `json:"name" binding:"omitnil,min=2,max=100"`
	Address     *string `json:"address" binding:"omitnil,min=5,max=200"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitnil,phone"`
	Email       *string `json:"email" binding:"omitnil,email"`
}

func (r *updateRestaurantRequest) normalize() {
	r.ID = strings.TrimSpace(r.ID)
	trimPtr(r.Name)
	trimPtr(r.Address)
	trimPtr(r.PhoneNumber)
	trimPtr(r.Email)
}

func (h HandlerSet) UpdateRestaurant(c *gin.Context) {
	var req updateRestaurantRequest
	if err := bindStrict(c, &req, "name", "address", "phoneNumber", "email", "id"); err != nil {
		h.respondError(c, err, failUpdateRestaurant)
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	restaurant, err := h.restaurants.Update(c.Request.Context(), userID, service.UpdateRestaurantInput{
		ID:          req.ID,
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		h.respondError(c, err, failUpdateRestaurant)
		return
	}

	view := newRestaurantView(restaurant)
	c.JSON(http.StatusOK, restaurantResponse{
		Code:       "RESTAURANT_UPDATED",
		Message:    "Restaurant updated successfully",
		Restaurant: &view,
	})
}

type deleteRestaurantRequest struct {
	ID string `json:"id" binding:"required"`
}

func (r *deleteRestaurantRequest) normalize() {
	r.ID = strings.TrimSpace(r.ID)
}

func (h HandlerSet) DeleteRestaurant(c *gin.Context) {
	var req deleteRestaurantRequest
	if err := bindStrict(c, &req, "id"); err != nil {
		h.respondError(c, err, failDeleteRestaurant)
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.restaurants.Delete(c.Request.Context(), userID, req.ID); err != nil {
		h.respondError(c, err, failDeleteRestaurant)
		return
	}

	c.JSON(http.StatusOK, restaurantResponse{
		Code:    "RESTAURANT_DELETED",
		Message: "Restaurant deleted successfully",
	})
}
