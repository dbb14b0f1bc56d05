package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvstudio-backend/internal/shared/server/middleware"
	"cvstudio-backend/internal/shared/server/respond"
	"cvstudio-backend/internal/usage"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cv/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	requestID := middleware.RequestIDFromContext(c)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	analysis, err := h.Svc.Analyze(c.Request.Context(), userID, requestID, req)
	if err != nil {
		h.respondAnalyzeError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, AnalyzeResponse{
		Success: true,
		Results: analysis.Report,
	})
}

func (h *Handler) respondAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCVTooShort):
		respond.Error(c, http.StatusBadRequest, "validation_error", "CV content is too short to analyze", nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your analysis limit. Upgrade your plan to continue.", []map[string]string{
			{"field": "usage", "issue": "limit_reached"},
		})
	case errors.Is(err, ErrNoCredential):
		c.JSON(http.StatusInternalServerError, AnalyzeResponse{
			Success: false,
			Error:   "Analysis service is not configured",
		})
	default:
		code := classifyFailure(err)
		status := http.StatusBadGateway
		if code == ErrorCodeInternal || code == ErrorCodeStorage {
			status = http.StatusInternalServerError
		}
		c.JSON(status, AnalyzeResponse{
			Success: false,
			Error:   sanitizeError(err),
		})
	}
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	analyses, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		item := gin.H{
			"analysisId": a.ID,
			"createdAt":  a.CreatedAt,
			"wordCount":  a.WordCount,
			"attempts":   a.Attempts,
		}
		if a.Report != nil {
			item["atsScore"] = a.Report.ATSCompatibility.Score
			item["isOptimal"] = a.Report.LengthAnalysis.IsOptimal
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}
