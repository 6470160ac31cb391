package service

import "github.com/necatisahhin/zeroAiBackend/internal/apperr"

// Client-facing failures. Handlers render Code and Message verbatim.
var (
	ErrInvalidCredentials = apperr.Unauthenticated("AUTH_ERROR_01", "Invalid email or password")
	ErrAlreadyLoggedIn    = apperr.Conflict("AUTH_ERROR_02", "User already logged in")
	ErrAccountInactive    = apperr.Forbidden("AUTH_ERROR_03", "User account is inactive")

	ErrRefreshTokenRequired = apperr.Validation("REFRESH_ERROR_01", "Refresh token is required")
	ErrInvalidRefreshToken  = apperr.Unauthenticated("REFRESH_ERROR_02", "Invalid or expired refresh token")
	ErrRefreshTokenNotFound = apperr.Unauthenticated("REFRESH_ERROR_03", "Refresh token not found")

	ErrAccessTokenRequired   = apperr.Unauthenticated("LOGOUT_ERROR_01", "Access token is required")
	ErrInvalidOrExpiredToken = apperr.Unauthenticated("LOGOUT_ERROR_02", "Invalid or expired token")

	ErrEmailInUse      = apperr.Conflict("VALL_ERROR_07", "Email already in use")
	ErrUserNotFound    = apperr.NotFound("PROFILE_ERROR_02", "User not found")
	ErrProfileInactive = apperr.Forbidden("PROFILE_ERROR_03", "User account is inactive")

	ErrRestaurantNotFound   = apperr.NotFound("RESTAURANT_NOT_FOUND", "Restaurant not found")
	ErrPhoneInUse           = apperr.Conflict("VALL_ERROR_19", "Phone number already in use")
	ErrRestaurantEmailInUse = apperr.Conflict("VALL_ERROR_04", "Email already in use")
)
