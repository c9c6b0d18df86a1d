package recommendationRepository

const (
	queryCreateRecommendation = `
INSERT INTO recommendations (id, class_name, title, description, created_at, updated_at)
VALUES (:id, :class_name, :title, :description, :created_at, :updated_at)`

	queryGetRecommendationByID = `
SELECT id, class_name, title, description, created_at, updated_at
FROM recommendations
    WHERE id = :id`

	queryListRecommendations = `
SELECT id, class_name, title, description, created_at, updated_at
FROM recommendations
    WHERE (CAST(:class_name AS TEXT) = '' OR class_name = :class_name)
ORDER BY created_at DESC`

	queryUpdateRecommendation = `
UPDATE recommendations
SET class_name = :class_name,
    title = :title,
    description = :description,
    updated_at = :updated_at
WHERE id = :id`

	queryDeleteRecommendation = `
DELETE FROM recommendations
WHERE id = :id`

	queryCreateSaved = `
INSERT INTO saved_recommendations (id, user_id, class_name, title, description, saved_at)
VALUES (:id, :user_id, :class_name, :title, :description, :saved_at)`

	queryListSavedByUser = `
SELECT id, user_id, class_name, title, description, saved_at
FROM saved_recommendations
    WHERE user_id = :user_id
ORDER BY saved_at DESC`
)
