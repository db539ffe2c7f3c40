package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/handler"
	"github.com/bookhaven/booking-api/internal/middleware"
	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/service/booking"
	"github.com/bookhaven/booking-api/internal/service/clinic"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *booking.Service
	clinics *clinic.Service
}

func NewHandler(service *booking.Service, clinics *clinic.Service) *Handler {
	return &Handler{
		service: service,
		clinics: clinics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) ListBookings(c *gin.Context) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), providerID, filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) GetBooking(c *gin.Context) {
	found, ok := h.ownedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	found, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), found.ID, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

// ownedBooking resolves the booking from the path and verifies the
// caller's ownership through its service's clinic.
func (h *Handler) ownedBooking(c *gin.Context) (*model.Booking, bool) {
	providerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user ID"))
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return nil, false
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}

	svc, err := h.clinics.GetService(c.Request.Context(), found.ServiceID)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}

	owns, err := h.clinics.OwnsClinic(c.Request.Context(), providerID, svc.ClinicID)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if !owns {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("booking not found"))
		return nil, false
	}
	return found, true
}

func parseFilters(c *gin.Context) (*model.BookingFilters, error) {
	filters := &model.BookingFilters{}

	if id := c.Query("clinic_id"); id != "" {
		clinicID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		filters.ClinicID = clinicID
	}
	if id := c.Query("service_id"); id != "" {
		serviceID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		filters.ServiceID = serviceID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.BookingStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, err
		}
		filters.StartDate = t
	}
	if date := c.Query("end_date"); date != "" {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, err
		}
		filters.EndDate = t
	}

	return filters, nil
}
