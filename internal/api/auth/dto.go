package auth

import "time"

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginUserResponse struct {
	Message          string `json:"message"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	IsAdmin          bool   `json:"is_admin"`
	AccessToken      string `json:"access_token"`
	ExpiresInMinutes int64  `json:"expires_in_minutes"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
