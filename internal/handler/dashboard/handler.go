package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/booking-api/internal/handler"
	"github.com/bookhaven/booking-api/internal/middleware"
	"github.com/bookhaven/booking-api/internal/service/dashboard"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), providerID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
