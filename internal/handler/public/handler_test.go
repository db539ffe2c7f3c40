package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
	availabilityService "github.com/bookhaven/booking-api/internal/service/availability"
	bookingService "github.com/bookhaven/booking-api/internal/service/booking"
	clinicService "github.com/bookhaven/booking-api/internal/service/clinic"
	"github.com/bookhaven/booking-api/pkg/logger"
)

type nilNotifier struct{}

func (nilNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking, svc *model.Service, clinic *model.Clinic) error {
	return nil
}

func (nilNotifier) SendBookingReminder(ctx context.Context, booking *model.Booking) error {
	return nil
}

type testEnv struct {
	engine  *gin.Engine
	clinic  *model.Clinic
	service *model.Service
	date    time.Time
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	clinics := memory.NewClinicRepository(store)
	bookings := memory.NewBookingRepository(store)
	rules := memory.NewAvailabilityRepository(store)

	ctx := context.Background()
	clinic := &model.Clinic{
		Name:        "Downtown Clinic",
		Active:      true,
		BookingSlug: "downtown-clinic",
	}
	require.NoError(t, clinics.Create(ctx, clinic))

	service := &model.Service{
		ClinicID: clinic.ID,
		Name:     "Consultation",
		Duration: 30,
		Price:    300,
		Currency: "EGP",
		Active:   true,
	}
	require.NoError(t, clinics.CreateService(ctx, service))

	// Two weeks out, so no slot is in the past.
	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 14)
	require.NoError(t, rules.Create(ctx, &model.AvailabilityRule{
		ClinicID:  clinic.ID,
		DayOfWeek: int(date.Weekday()),
		StartTime: "09:00",
		EndTime:   "17:00",
		Active:    true,
	}))

	clinicSvc := clinicService.NewService(clinics)
	availabilitySvc := availabilityService.NewService(rules, clinics)
	bookingSvc := bookingService.NewService(bookings, clinics, availabilitySvc, nilNotifier{}, logger.NewLogger(nil))

	engine := gin.New()
	NewHandler(clinicSvc, bookingSvc).RegisterRoutes(engine.Group("/api/v1"))

	return &testEnv{
		engine:  engine,
		clinic:  clinic,
		service: service,
		date:    date,
	}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestGetClinicPage(t *testing.T) {
	env := setupEnv(t)

	w, body := env.request(t, http.MethodGet, "/api/v1/public/clinics/downtown-clinic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	clinicData := data["clinic"].(map[string]interface{})
	assert.Equal(t, "downtown-clinic", clinicData["booking_slug"])
	assert.Len(t, data["services"], 1)

	w, body = env.request(t, http.MethodGet, "/api/v1/public/clinics/no-such-clinic", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", body["status"])
}

func TestGetSlots(t *testing.T) {
	env := setupEnv(t)

	path := fmt.Sprintf("/api/v1/public/services/%s/slots?date=%s",
		env.service.ID, env.date.Format("2006-01-02"))
	w, body := env.request(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	slots := data["slots"].([]interface{})
	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "16:30", slots[15])
	assert.Equal(t, float64(30), data["granularity"])

	w, _ = env.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/public/services/%s/slots?date=bogus", env.service.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingEndToEnd(t *testing.T) {
	env := setupEnv(t)

	payload := map[string]interface{}{
		"service_id":     env.service.ID,
		"customer_name":  "Sara",
		"customer_email": "sara@example.com",
		"scheduled_at":   env.date.Add(10 * time.Hour).Format(time.RFC3339),
	}

	w, body := env.request(t, http.MethodPost, "/api/v1/public/bookings", payload)
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", body)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])

	// Same slot again races and loses.
	w, body = env.request(t, http.MethodPost, "/api/v1/public/bookings", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", body["status"])

	// Off-grid time is rejected before touching the ledger.
	payload["scheduled_at"] = env.date.Add(8 * time.Hour).Format(time.RFC3339)
	w, _ = env.request(t, http.MethodPost, "/api/v1/public/bookings", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
