package enhance

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvstudio-backend/internal/shared/server/middleware"
	"cvstudio-backend/internal/shared/server/respond"
	"cvstudio-backend/internal/usage"
)

// Handler wires HTTP handlers to the enhancement service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches enhancement routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cv/enhance", h.enhance)
}

func (h *Handler) enhance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	requestID := middleware.RequestIDFromContext(c)

	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	resp, err := h.Svc.Enhance(c.Request.Context(), userID, requestID, req)
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your enhancement limit. Upgrade your plan to continue.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		case errors.Is(err, ErrNoCredential):
			respond.Error(c, http.StatusInternalServerError, "not_configured", "Enhancement service is not configured", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "llm_unavailable", "Enhancement service is temporarily unavailable", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, resp)
}
