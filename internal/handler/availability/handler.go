package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/handler"
	"github.com/bookhaven/booking-api/internal/middleware"
	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/service/availability"
	"github.com/bookhaven/booking-api/internal/service/clinic"
)

type Handler struct {
	service *availability.Service
	clinics *clinic.Service
}

func NewHandler(service *availability.Service, clinics *clinic.Service) *Handler {
	return &Handler{
		service: service,
		clinics: clinics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rules := r.Group("/clinics/:id/availability")
	{
		rules.POST("", h.CreateRule)
		rules.GET("", h.ListRules)
		rules.PUT("/:ruleID", h.UpdateRule)
		rules.DELETE("/:ruleID", h.DeleteRule)
	}
}

func (h *Handler) CreateRule(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	var req model.CreateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rule))
}

func (h *Handler) ListRules(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rules))
}

func (h *Handler) UpdateRule(c *gin.Context) {
	ruleID, ok := h.ownedRuleID(c)
	if !ok {
		return
	}

	var req model.UpdateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), ruleID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rule))
}

func (h *Handler) DeleteRule(c *gin.Context) {
	ruleID, ok := h.ownedRuleID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), ruleID); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ownedClinicID(c *gin.Context) (uuid.UUID, bool) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return uuid.Nil, false
	}

	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return uuid.Nil, false
	}

	owns, err := h.clinics.OwnsClinic(c.Request.Context(), providerID, clinicID)
	if err != nil {
		handler.Error(c, err)
		return uuid.Nil, false
	}
	if !owns {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("clinic not found"))
		return uuid.Nil, false
	}
	return clinicID, true
}

// ownedRuleID resolves the rule from the path and verifies it belongs
// to a clinic the caller owns.
func (h *Handler) ownedRuleID(c *gin.Context) (uuid.UUID, bool) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return uuid.Nil, false
	}

	ruleID, err := uuid.Parse(c.Param("ruleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid rule ID"))
		return uuid.Nil, false
	}

	rule, err := h.service.GetRule(c.Request.Context(), ruleID)
	if err != nil {
		handler.Error(c, err)
		return uuid.Nil, false
	}
	if rule.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("availability rule not found"))
		return uuid.Nil, false
	}
	return ruleID, true
}
