package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	httputil "stayd/pkg/http"
	"stayd/pkg/logger"
	"stayd/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	HandlePaymentResult(ctx context.Context, result *model.PaymentResult) (*model.Booking, error)
	Cancel(ctx context.Context, id string, req *model.CancelBookingRequest) (*model.Booking, error)
	CheckIn(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	Availability(ctx context.Context, propertyID string, window model.DateInterval) (*model.AvailabilityResponse, error)
}

type ReservationHandler struct {
	service ReservationService
	log     *logger.Logger
}

func NewReservationHandler(svc ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeBadBody(w, err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *ReservationHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.CheckIn(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

// PaymentResult receives the payment provider's webhook and settles the
// pending hold.
func (h *ReservationHandler) PaymentResult(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var result model.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.writeBadBody(w, err)
		return
	}

	booking, err := h.service.HandlePaymentResult(r.Context(), &result)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	window, err := httputil.ExtractDateWindow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	availability, err := h.service.Availability(r.Context(), ps.ByName("propertyId"), window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, availability)
}

func (h *ReservationHandler) writeBadBody(w http.ResponseWriter, err error) {
	h.log.Warn("Failed to decode request body", "error", err)
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Code:  "INVALID_INPUT",
		Error: "Invalid request body",
	})
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/check-in", h.CheckIn)
	router.POST("/api/v1/bookings/:id/complete", h.Complete)
	router.POST("/api/v1/payments/results", h.PaymentResult)
	router.GET("/api/v1/properties/:propertyId/availability", h.Availability)
}
