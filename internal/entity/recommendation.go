package entity

import "time"

// LeafClasses are the leaf conditions a recommendation can be attached to.
var LeafClasses = []string{"Curl Leaf", "Yellowish Leaf", "Spot Leaf"}

func IsLeafClass(name string) bool {
	for _, c := range LeafClasses {
		if c == name {
			return true
		}
	}
	return false
}

type Recommendation struct {
	ID          string    `db:"id"`
	ClassName   string    `db:"class_name"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type SavedRecommendation struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ClassName   string    `db:"class_name"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	SavedAt     time.Time `db:"saved_at"`
}
