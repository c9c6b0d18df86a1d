package recommendationService

import (
	"strings"

	"greeny/internal/api/recommendation"
	"greeny/internal/entity"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeClassName accepts any casing of a leaf class ("curl leaf") and
// returns its canonical form.
func normalizeClassName(name string) (string, error) {
	canonical := cases.Title(language.English).String(strings.ToLower(strings.Join(strings.Fields(name), " ")))
	if !entity.IsLeafClass(canonical) {
		return "", recommendation.ErrInvalidClassName
	}
	return canonical, nil
}

func validateID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return recommendation.ErrInvalidRecommendationID
	}
	return nil
}

func toResponse(rec entity.Recommendation) recommendation.RecommendationResponse {
	return recommendation.RecommendationResponse{
		ID:          rec.ID,
		ClassName:   rec.ClassName,
		Title:       rec.Title,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toSavedResponse(saved entity.SavedRecommendation) recommendation.SavedRecommendationResponse {
	return recommendation.SavedRecommendationResponse{
		ID:          saved.ID,
		ClassName:   saved.ClassName,
		Title:       saved.Title,
		Description: saved.Description,
		SavedAt:     saved.SavedAt,
	}
}
