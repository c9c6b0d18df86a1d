package recommendation

import "time"

type CreateRecommendationRequest struct {
	ClassName   string `json:"class_name" validate:"required"`
	Title       string `json:"title" validate:"required,min=3,max=256"`
	Description string `json:"description" validate:"required"`
}

// UpdateRecommendationRequest is a partial update; empty fields are kept.
type UpdateRecommendationRequest struct {
	ClassName   string `json:"class_name" validate:"omitempty"`
	Title       string `json:"title" validate:"omitempty,min=3,max=256"`
	Description string `json:"description" validate:"omitempty"`
}

func (r UpdateRecommendationRequest) Empty() bool {
	return r.ClassName == "" && r.Title == "" && r.Description == ""
}

type SaveRecommendationRequest struct {
	ClassName   string `json:"class_name" validate:"required"`
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description" validate:"required"`
}

type RecommendationResponse struct {
	ID          string    `json:"id"`
	ClassName   string    `json:"class_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RecommendationListResponse struct {
	Recommendations []RecommendationResponse `json:"recommendations"`
	Total           int                      `json:"total"`
}

type SavedRecommendationResponse struct {
	ID          string    `json:"id"`
	ClassName   string    `json:"class_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SavedAt     time.Time `json:"saved_at"`
}

type SavedRecommendationListResponse struct {
	Recommendations []SavedRecommendationResponse `json:"recommendations"`
	Total           int                           `json:"total"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
