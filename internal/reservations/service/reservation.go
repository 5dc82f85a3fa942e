// Package service implements the booking workflows: creation with a
// provisional hold, confirmation on payment, cancellation with refunds,
// stay progression, hold expiry, and availability queries. It composes
// the interval manager, the booking repository, and the external
// catalog and payment services.
package service

import (
	"context"
	"errors"
	"time"

	reserrors "stayd/internal/reservations/errors"
	"stayd/internal/reservations/lifecycle"
	"stayd/internal/reservations/manager"
	"stayd/internal/reservations/repository"
	"stayd/internal/reservations/validator"
	"stayd/pkg/config"
	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"

	"github.com/google/uuid"
)

type CatalogService interface {
	GetProperty(ctx context.Context, propertyID string) (*model.Property, error)
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntent, error)
}

type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingConfirmed(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
	BookingExpired(ctx context.Context, booking *model.Booking)
}

// RefundPolicy maps days of lead time before check-in to the refundable
// portion of the total price.
type RefundPolicy func(leadDays int, totalPrice int64) int64

// DefaultRefundPolicy refunds the full price a week or more out, half
// with at least a day's notice, and nothing after that.
func DefaultRefundPolicy(leadDays int, totalPrice int64) int64 {
	switch {
	case leadDays >= 7:
		return totalPrice
	case leadDays >= 1:
		return totalPrice / 2
	default:
		return 0
	}
}

type ReservationService struct {
	cfg       *config.Config
	bookings  repository.BookingRepository
	intervals *manager.Manager
	validator *validator.ReservationValidator
	catalog   CatalogService
	payments  PaymentGateway
	events    EventPublisher
	refund    RefundPolicy

	now func() time.Time
}

func NewReservationService(
	cfg *config.Config,
	bookings repository.BookingRepository,
	intervals *manager.Manager,
	v *validator.ReservationValidator,
	catalog CatalogService,
	payments PaymentGateway,
	events EventPublisher,
) *ReservationService {
	return &ReservationService{
		cfg:       cfg,
		bookings:  bookings,
		intervals: intervals,
		validator: v,
		catalog:   catalog,
		payments:  payments,
		events:    events,
		refund:    DefaultRefundPolicy,
		now:       time.Now,
	}
}

// Create places a provisional hold on the requested dates, opens a
// payment intent, and persists the booking in requested state. The hold
// keeps the dates reserved until the payment result arrives or the hold
// window elapses.
func (s *ReservationService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	now := s.now().UTC()

	interval, err := s.validator.ValidateCreate(req, now)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{
			"property_id": req.PropertyID,
		})
	}

	property, err := s.catalog.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsActive {
		return nil, apperrors.Validation("property is not accepting bookings", map[string]any{
			"property_id": property.ID,
		})
	}
	if req.Guests > property.MaxGuests {
		return nil, apperrors.Validation("guest count exceeds property capacity", map[string]any{
			"guests":     req.Guests,
			"max_guests": property.MaxGuests,
		})
	}

	bookingID := uuid.New().String()
	expiresAt := now.Add(s.cfg.HoldWindow)
	totalPrice := property.NightlyPrice * int64(interval.Nights())

	record, err := s.reserveWithRetry(ctx, req.PropertyID, bookingID, interval, &expiresAt)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:            bookingID,
		PropertyID:    property.ID,
		GuestID:       req.GuestID,
		HostID:        property.HostID,
		Interval:      interval,
		Guests:        req.Guests,
		TotalPrice:    totalPrice,
		Currency:      property.Currency,
		Status:        model.StatusRequested,
		RecordID:      record.ID,
		HoldExpiresAt: &expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Persist before opening the intent so the gateway's callback can
	// always find the booking, however fast it fires.
	if err := s.bookings.Create(ctx, booking); err != nil {
		s.releaseQuietly(ctx, booking)
		return nil, apperrors.Internal("failed to persist booking", err)
	}

	intent, err := s.payments.CreateIntent(ctx, &model.PaymentIntentRequest{
		BookingID:       bookingID,
		Amount:          totalPrice,
		Currency:        property.Currency,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		s.releaseQuietly(ctx, booking)
		if _, cancelErr := s.finishCancellation(ctx, booking, 0); cancelErr != nil {
			s.cfg.Log.Error("Failed to cancel booking after payment intent failure",
				"booking_id", booking.ID,
				"error", cancelErr,
			)
		}
		return nil, err
	}

	booking.PaymentIntentID = intent.ID
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to persist booking", err)
	}

	s.events.BookingCreated(ctx, booking)
	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"interval", interval.String(),
		"expires_at", expiresAt,
	)
	return booking, nil
}

// reserveWithRetry retries a hold attempt through transient lock
// timeouts. Date conflicts are final and never retried.
func (s *ReservationService) reserveWithRetry(ctx context.Context, propertyID, bookingID string, interval model.DateInterval, expiresAt *time.Time) (*model.ReservationRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.LockRetries; attempt++ {
		record, err := s.intervals.TryReserve(ctx, propertyID, bookingID, interval, model.KindHold, expiresAt)
		if err == nil {
			return record, nil
		}
		lastErr = err
		if !manager.IsRetryable(err) {
			break
		}
		s.cfg.Log.Warn("Property lock contended, retrying hold",
			"property_id", propertyID,
			"attempt", attempt+1,
		)
	}
	return nil, mapReservationError(lastErr, propertyID)
}

func (s *ReservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("booking", id)
		}
		return nil, apperrors.Internal("failed to load booking", err)
	}
	return booking, nil
}

// HandlePaymentResult settles a pending hold. Success promotes the hold
// to a confirmed reservation; failure releases the dates and cancels
// the booking. Results are correlated by intent id and cross-checked
// against the booking id the gateway echoes back.
func (s *ReservationService) HandlePaymentResult(ctx context.Context, result *model.PaymentResult) (*model.Booking, error) {
	if err := s.validator.ValidatePaymentResult(result); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	booking, err := s.bookings.FindByPaymentIntent(ctx, result.IntentID)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("booking for payment intent", result.IntentID)
		}
		return nil, apperrors.Internal("failed to load booking", err)
	}
	if booking.ID != result.BookingID {
		return nil, apperrors.Validation("payment result does not match booking", map[string]any{
			"booking_id": result.BookingID,
			"intent_id":  result.IntentID,
		})
	}

	switch booking.Status {
	case model.StatusRequested:
		// fall through to settle
	case model.StatusConfirmed:
		if result.Succeeded() {
			return booking, nil
		}
		return nil, apperrors.Conflict("booking already confirmed")
	case model.StatusExpired:
		return nil, apperrors.HoldExpired("hold expired before payment completed")
	default:
		return nil, apperrors.Conflict("booking is no longer awaiting payment")
	}

	if !result.Succeeded() {
		s.releaseQuietly(ctx, booking)
		return s.finishCancellation(ctx, booking, 0)
	}

	if _, err := s.intervals.Promote(ctx, booking.PropertyID, booking.RecordID); err != nil {
		if errors.Is(err, reserrors.ErrAlreadyExpired) {
			return nil, apperrors.HoldExpired("hold expired before payment completed")
		}
		return nil, mapReservationError(err, booking.PropertyID)
	}

	now := s.now().UTC()
	if err := lifecycle.Transition(booking, model.StatusConfirmed, now); err != nil {
		return nil, err
	}
	booking.HoldExpiresAt = nil
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to persist confirmation", err)
	}

	s.events.BookingConfirmed(ctx, booking)
	s.cfg.Log.Info("Booking confirmed", "booking_id", booking.ID, "property_id", booking.PropertyID)
	return booking, nil
}

// Cancel releases the booking's dates and applies the refund policy.
// Refunds only apply to bookings that were paid, so a still-requested
// booking cancels without one.
func (s *ReservationService) Cancel(ctx context.Context, id string, req *model.CancelBookingRequest) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanTransition(booking.Status, model.StatusCancelled) {
		return nil, apperrors.Conflict("booking cannot be cancelled").WithDetails(map[string]any{
			"booking_id": booking.ID,
			"status":     booking.Status,
		})
	}

	var refundAmount int64
	if booking.Status == model.StatusConfirmed || booking.Status == model.StatusCheckedIn {
		leadDays := int(booking.Interval.Start.Sub(model.Day(s.now().UTC())).Hours() / 24)
		refundAmount = s.refund(leadDays, booking.TotalPrice)
	}

	s.releaseQuietly(ctx, booking)

	cancelled, err := s.finishCancellation(ctx, booking, refundAmount)
	if err != nil {
		return nil, err
	}
	if req != nil && req.Actor != "" {
		s.cfg.Log.Info("Booking cancelled",
			"booking_id", cancelled.ID,
			"actor", req.Actor,
			"refund_amount", refundAmount,
		)
	}
	return cancelled, nil
}

// finishCancellation moves the booking to cancelled, then on to
// refunded when a refund is owed, and persists the final state once.
func (s *ReservationService) finishCancellation(ctx context.Context, booking *model.Booking, refundAmount int64) (*model.Booking, error) {
	now := s.now().UTC()
	if err := lifecycle.Transition(booking, model.StatusCancelled, now); err != nil {
		return nil, err
	}
	booking.HoldExpiresAt = nil
	if refundAmount > 0 {
		booking.RefundAmount = refundAmount
		if err := lifecycle.Transition(booking, model.StatusRefunded, now); err != nil {
			return nil, err
		}
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to persist cancellation", err)
	}
	s.events.BookingCancelled(ctx, booking)
	return booking, nil
}

func (s *ReservationService) CheckIn(ctx context.Context, id string) (*model.Booking, error) {
	return s.advance(ctx, id, model.StatusCheckedIn)
}

func (s *ReservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.advance(ctx, id, model.StatusCompleted)
}

func (s *ReservationService) advance(ctx context.Context, id string, to model.BookingStatus) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Transition(booking, to, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to persist status change", err)
	}
	return booking, nil
}

// SweepExpiredHolds reclaims dates from holds whose window has elapsed.
// Each booking is settled independently so one failure never stalls the
// rest of the batch; a failed booking is retried on the next sweep.
func (s *ReservationService) SweepExpiredHolds(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expired, err := s.bookings.FindExpiredHolds(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, apperrors.Internal("failed to query expired holds", err)
	}

	reclaimed := 0
	for _, booking := range expired {
		done, err := s.expireBooking(ctx, booking, now)
		if err != nil {
			s.cfg.Log.Error("Failed to expire hold",
				"booking_id", booking.ID,
				"property_id", booking.PropertyID,
				"error", err,
			)
			continue
		}
		if done {
			reclaimed++
		}
	}

	if pending, err := s.bookings.CountByStatus(ctx, model.StatusRequested); err == nil {
		s.cfg.Log.Info("Hold sweep finished", "reclaimed", reclaimed, "pending_holds", pending)
	}
	return reclaimed, nil
}

// expireBooking reclaims one hold. The booking row from the sweep query
// is a stale snapshot; the manager re-reads the record under the
// property lock, so a payment that confirmed the booking mid-sweep
// makes the release a no-op and the booking is left alone.
func (s *ReservationService) expireBooking(ctx context.Context, booking *model.Booking, now time.Time) (bool, error) {
	reclaimed, err := s.intervals.ReleaseExpiredHold(ctx, booking.PropertyID, booking.RecordID)
	if err != nil {
		return false, err
	}
	if !reclaimed {
		return false, nil
	}

	if err := lifecycle.Transition(booking, model.StatusExpired, now); err != nil {
		return false, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return false, err
	}

	s.events.BookingExpired(ctx, booking)
	s.cfg.Log.Info("Hold expired",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
	)
	return true, nil
}

// Availability lists the blocked sub-ranges of a window for a property.
func (s *ReservationService) Availability(ctx context.Context, propertyID string, window model.DateInterval) (*model.AvailabilityResponse, error) {
	if err := s.validator.ValidateAvailabilityWindow(window, s.cfg.MaxAvailabilityWindowDays); err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{
			"property_id": propertyID,
		})
	}
	if _, err := s.catalog.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	records := s.intervals.QueryOverlap(propertyID, window)
	blocked := make([]model.DateInterval, 0, len(records))
	for _, rec := range records {
		if clipped, ok := rec.Interval.Clip(window); ok {
			blocked = append(blocked, clipped)
		}
	}

	return &model.AvailabilityResponse{
		PropertyID:  propertyID,
		Window:      window,
		Unavailable: mergeIntervals(blocked),
	}, nil
}

// mergeIntervals coalesces sorted, possibly touching ranges. The input
// arrives ordered by start from the interval store.
func mergeIntervals(intervals []model.DateInterval) []model.DateInterval {
	if len(intervals) == 0 {
		return intervals
	}
	merged := intervals[:1]
	for _, next := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !next.Start.After(last.End) {
			if next.End.After(last.End) {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// releaseQuietly frees a booking's dates on a best-effort basis. The
// caller is already on a failure or cleanup path, so a release error is
// logged and swallowed; the sweep picks up anything left behind.
func (s *ReservationService) releaseQuietly(ctx context.Context, booking *model.Booking) {
	if booking.RecordID == "" {
		return
	}
	if err := s.intervals.Release(ctx, booking.PropertyID, booking.RecordID); err != nil {
		s.cfg.Log.Error("Failed to release reservation record",
			"booking_id", booking.ID,
			"record_id", booking.RecordID,
			"error", err,
		)
	}
}

func mapReservationError(err error, propertyID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, reserrors.ErrConflict):
		return apperrors.DatesUnavailable("requested dates overlap an existing reservation").WithDetails(map[string]any{
			"property_id": propertyID,
		})
	case errors.Is(err, reserrors.ErrLockTimeout):
		return apperrors.LockTimeout("property is busy, retry shortly")
	case errors.Is(err, reserrors.ErrInvalidInterval):
		return apperrors.Validation(err.Error(), nil)
	case errors.Is(err, reserrors.ErrRecordNotFound):
		return apperrors.NotFound("reservation record")
	default:
		return apperrors.Internal("reservation operation failed", err)
	}
}
