package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/handler"
	"github.com/bookhaven/booking-api/internal/middleware"
	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/service/clinic"
)

type Handler struct {
	service *clinic.Service
}

func NewHandler(service *clinic.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.PUT("/:id", h.UpdateClinic)

		clinics.POST("/:id/services", h.CreateService)
		clinics.GET("/:id/services", h.ListServices)
		clinics.PUT("/:id/services/:serviceID", h.UpdateService)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateClinic(c.Request.Context(), providerID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListClinics(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return
	}

	clinics, err := h.service.ListClinics(c.Request.Context(), providerID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}

func (h *Handler) GetClinic(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	found, err := h.service.GetClinic(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateClinic(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) CreateService(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateService(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListServices(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) UpdateService(c *gin.Context) {
	clinicID, ok := h.ownedClinicID(c)
	if !ok {
		return
	}

	serviceID, err := uuid.Parse(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	existing, err := h.service.GetService(c.Request.Context(), serviceID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if existing.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("service not found"))
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateService(c.Request.Context(), serviceID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

// ownedClinicID parses the clinic ID from the path and enforces that
// the authenticated provider owns it. It writes the response on
// failure.
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

	owns, err := h.service.OwnsClinic(c.Request.Context(), providerID, clinicID)
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
