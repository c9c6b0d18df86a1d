package auth

import (
	"net/http"

	"greeny/pkg/response"
)

var (
	ErrEmailAlreadyExists     = response.NewError(http.StatusConflict, "user already exists")
	ErrInvalidEmailOrPassword = response.NewError(http.StatusBadRequest, "email or password is wrong")
	ErrUserNotFound           = response.NewError(http.StatusNotFound, "user not found")
	ErrTooManyLoginAttempts   = response.NewError(http.StatusTooManyRequests, "too many failed sign-in attempts, try again later")
	ErrWeakPassword           = response.NewError(http.StatusBadRequest, "password must be at least 8 characters long")
)
