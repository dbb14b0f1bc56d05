package resumes

import (
	"time"

	"cvstudio-backend/internal/cv"
)

// Resume is a saved CV builder document.
type Resume struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Title     string      `json:"title"`
	Data      cv.Document `json:"data"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
