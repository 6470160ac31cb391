package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/necatisahhin/zeroAiBackend/internal/apperr"
)

// failure is what an operation answers when something unexpected breaks.
type failure struct {
	op      string
	code    string
	message string
}

var (
	failRegister   = failure{op: "register", code: "INTERNAL_SERVER_ERROR", message: "Internal server error"}
	failLogin      = failure{op: "login", code: "INTERNAL_SERVER_ERROR", message: "Internal server error"}
	failRefresh    = failure{op: "refresh", code: "REFRESH_ERROR_04", message: "Internal server error"}
	failLogout     = failure{op: "logout", code: "LOGOUT_ERROR_03", message: "Internal server error"}
	failLogoutAll  = failure{op: "logout all", code: "LOGOUT_ALL_ERROR_01", message: "Internal server error"}
	failGetProfile = failure{op: "get profile", code: "PROFILE_ERROR_04", message: "Internal server error"}
	failUpdateProf = failure{op: "update profile", code: "PROFILE_ERROR_06", message: "Internal server error"}

	failCreateRestaurant = failure{op: "create restaurant", code: "INTERNAL_SERVER_ERROR", message: "An error occurred while creating the restaurant"}
	failUpdateRestaurant = failure{op: "update restaurant", code: "INTERNAL_SERVER_ERROR", message: "An error occurred while updating the restaurant"}
	failDeleteRestaurant = failure{op: "delete restaurant", code: "INTERNAL_SERVER_ERROR", message: "An error occurred while deleting the restaurant"}
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h HandlerSet) respondError(c *gin.Context, err error, f failure) {
	if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.KindInternal {
		c.JSON(appErr.Status(), errorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}

	h.log.Error().
		Err(err).
		Str("op", f.op).
		Str("request_id", c.Writer.Header().Get("X-Request-Id")).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, errorResponse{Code: f.code, Message: f.message})
}
