package public

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookhaven/booking-api/internal/handler"
	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/service/booking"
	"github.com/bookhaven/booking-api/internal/service/clinic"
)

const dateLayout = "2006-01-02"

// Handler serves the anonymous booking surface: clinic pages resolved
// by slug, free-slot queries and booking submission. No authentication
// is involved; rate limiting is applied at the router.
type Handler struct {
	clinics  *clinic.Service
	bookings *booking.Service
}

func NewHandler(clinics *clinic.Service, bookings *booking.Service) *Handler {
	return &Handler{
		clinics:  clinics,
		bookings: bookings,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.GET("/clinics/:slug", h.GetClinicPage)
		public.GET("/services/:id/slots", h.GetSlots)
		public.POST("/bookings", h.CreateBooking)
	}
}

// GetClinicPage returns the public view of a clinic and its bookable
// services.
func (h *Handler) GetClinicPage(c *gin.Context) {
	found, err := h.clinics.GetClinicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	services, err := h.clinics.ListActiveServices(c.Request.Context(), found.ID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"clinic":   publicClinic(found),
		"services": services,
	}))
}

func (h *Handler) GetSlots(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date must be YYYY-MM-DD"))
		return
	}

	slots, err := h.bookings.FreeSlots(c.Request.Context(), serviceID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	svc, err := h.clinics.GetService(c.Request.Context(), serviceID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	owner, err := h.clinics.GetClinic(c.Request.Context(), svc.ClinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.Format("15:04"))
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(&model.SlotsResponse{
		Date:        date.Format(dateLayout),
		Granularity: owner.Granularity(),
		Slots:       times,
	}))
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.bookings.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

// publicClinic strips provider-internal fields from the public page.
func publicClinic(cl *model.Clinic) gin.H {
	return gin.H{
		"name":             cl.Name,
		"description":      cl.Description,
		"address":          cl.Address,
		"phone":            cl.Phone,
		"booking_slug":     cl.BookingSlug,
		"slot_granularity": cl.Granularity(),
	}
}
