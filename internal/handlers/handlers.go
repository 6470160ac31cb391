package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/jobs"
	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/middleware"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
	"github.com/necatisahhin/zeroAiBackend/internal/security"
	"github.com/necatisahhin/zeroAiBackend/internal/service"
)

const apiVersion = "1.0.0"

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	db          *gorm.DB
	cache       *redis.Client
	codec       *security.TokenCodec
	sessions    *service.SessionManager
	users       *service.UserService
	restaurants *service.RestaurantService
}

// NewHandlerSet wires repositories and services over db. cache may be nil;
// queue may be nil, in which case refresh tokens are persisted inline.
func NewHandlerSet(
	log zerolog.Logger,
	db *gorm.DB,
	cache *redis.Client,
	queue jobs.Queue,
	m *metrics.Metrics,
	cfg *config.AppConfig,
) (HandlerSet, error) {
	setupValidator()

	hasher, err := security.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		return HandlerSet{}, err
	}
	codec := security.NewTokenCodec(security.TokenConfig{
		Secret:     cfg.Security.JWTSecret,
		Issuer:     cfg.Security.JWTIssuer,
		AccessTTL:  cfg.Security.AccessTTL,
		RefreshTTL: cfg.Security.RefreshTTL,
	})

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)

	sessions := service.NewSessionManager(userRepo, tokenRepo, codec, hasher, service.SessionOptions{
		AsyncPersist: cfg.Security.AsyncRefreshPersist,
		Queue:        queue,
		Metrics:      m,
	}, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		db:          db,
		cache:       cache,
		codec:       codec,
		sessions:    sessions,
		users:       service.NewUserService(userRepo, hasher, log),
		restaurants: service.NewRestaurantService(restaurantRepo, log),
	}, nil
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.GET("/", h.Status)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/logoutAll", h.LogoutAll)
	}

	profile := v1.Group("/profile")
	profile.Use(middleware.Auth(h.codec))
	{
		profile.GET("/getProfile", h.GetProfile)
		profile.PUT("/updateProfile", h.UpdateProfile)
	}

	restaurants := v1.Group("/restaurants")
	restaurants.Use(middleware.Auth(h.codec))
	{
		restaurants.POST("/createRestaurant", h.CreateRestaurant)
		restaurants.PUT("/updateRestaurant", h.UpdateRestaurant)
		restaurants.DELETE("/deleteRestaurant", h.DeleteRestaurant)
	}
}

type statusResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timeStamp"`
}

func (h HandlerSet) Status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Message:   "API is working!",
		Status:    "ok",
		Version:   apiVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
