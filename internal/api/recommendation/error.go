package recommendation

import (
	"net/http"
	"strings"

	"greeny/internal/entity"
	"greeny/pkg/response"
)

var (
	ErrRecommendationNotFound  = response.NewError(http.StatusNotFound, "recommendation not found")
	ErrInvalidRecommendationID = response.NewError(http.StatusBadRequest, "invalid recommendation id")
	ErrInvalidClassName        = response.NewError(http.StatusBadRequest, "invalid class name. Allowed values: "+strings.Join(entity.LeafClasses, ", "))
	ErrNoFieldsToUpdate        = response.NewError(http.StatusBadRequest, "no fields to update provided")
)
