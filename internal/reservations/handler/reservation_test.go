package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/logger"
	"stayd/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReservationService struct {
	createFunc        func(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.Booking, error)
	paymentResultFunc func(ctx context.Context, result *model.PaymentResult) (*model.Booking, error)
	cancelFunc        func(ctx context.Context, id string, req *model.CancelBookingRequest) (*model.Booking, error)
	availabilityFunc  func(ctx context.Context, propertyID string, window model.DateInterval) (*model.AvailabilityResponse, error)
}

func (m *mockReservationService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) HandlePaymentResult(ctx context.Context, result *model.PaymentResult) (*model.Booking, error) {
	if m.paymentResultFunc != nil {
		return m.paymentResultFunc(ctx, result)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string, req *model.CancelBookingRequest) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, req)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) CheckIn(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockReservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockReservationService) Availability(ctx context.Context, propertyID string, window model.DateInterval) (*model.AvailabilityResponse, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, propertyID, window)
	}
	return &model.AvailabilityResponse{}, nil
}

func newTestRouter(svc ReservationService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_Success(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute).UTC()
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
			return &model.Booking{
				ID:            "b-1",
				PropertyID:    req.PropertyID,
				Status:        model.StatusRequested,
				HoldExpiresAt: &expires,
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"property_id":"p1","guest_id":"g1","start_date":"2026-09-10","end_date":"2026-09-15","guests":2,"payment_method_id":"pm1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b-1", resp.Data.ID)
	assert.Equal(t, model.StatusRequested, resp.Data.Status)
	require.NotNil(t, resp.Data.HoldExpiresAt)
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_ConflictMapsTo409(t *testing.T) {
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
			return nil, apperrors.DatesUnavailable("requested dates overlap an existing reservation")
		},
	}
	router := newTestRouter(svc)

	body := `{"property_id":"p1","guest_id":"g1","start_date":"2026-09-10","end_date":"2026-09-15","guests":2,"payment_method_id":"pm1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeDatesUnavailable, resp.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockReservationService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("booking", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancel_EmptyBodyAllowed(t *testing.T) {
	var gotID string
	svc := &mockReservationService{
		cancelFunc: func(ctx context.Context, id string, req *model.CancelBookingRequest) (*model.Booking, error) {
			gotID = id
			return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/b-1/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b-1", gotID)
}

func TestPaymentResult_HoldExpiredMapsTo410(t *testing.T) {
	svc := &mockReservationService{
		paymentResultFunc: func(ctx context.Context, result *model.PaymentResult) (*model.Booking, error) {
			return nil, apperrors.HoldExpired("hold expired before payment completed")
		},
	}
	router := newTestRouter(svc)

	body := `{"intent_id":"pi-1","booking_id":"b-1","status":"succeeded"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/results", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestAvailability_QueryParams(t *testing.T) {
	var gotProperty string
	var gotWindow model.DateInterval
	svc := &mockReservationService{
		availabilityFunc: func(ctx context.Context, propertyID string, window model.DateInterval) (*model.AvailabilityResponse, error) {
			gotProperty = propertyID
			gotWindow = window
			return &model.AvailabilityResponse{PropertyID: propertyID, Window: window}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/p1/availability?from=2026-09-01&to=2026-09-30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", gotProperty)
	assert.Equal(t, 29, gotWindow.Nights())
}

func TestAvailability_MissingParams(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/p1/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
