package enhance

import "cvstudio-backend/internal/cv"

// Recommendation is one reviewer instruction from a prior analysis.
type Recommendation struct {
	Section        string `json:"section"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact,omitempty"`
	Type           string `json:"type,omitempty"`
}

// EnhanceRequest is the enhancement endpoint payload.
type EnhanceRequest struct {
	CurrentCV       cv.Document      `json:"currentCV" binding:"required"`
	Recommendations []Recommendation `json:"recommendations"`
}

// EnhanceResponse always carries a usable document: either the enhanced
// CV or, after unrecoverable output damage, the original input.
type EnhanceResponse struct {
	UpdatedCV              cv.Document `json:"updatedCV"`
	AppliedRecommendations int         `json:"appliedRecommendations"`
	SkippedRecommendations int         `json:"skippedRecommendations"`
	Message                string      `json:"message"`
	QualityAttempt         int         `json:"qualityAttempt,omitempty"`
	Error                  string      `json:"error,omitempty"`
}
