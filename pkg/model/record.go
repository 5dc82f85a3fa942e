package model

import "time"

type RecordKind string

const (
	KindHold      RecordKind = "hold"
	KindConfirmed RecordKind = "confirmed"
)

// ReservationRecord is one held or confirmed interval on a property.
// Records of kind hold carry an expiry; once promoted the expiry is cleared.
type ReservationRecord struct {
	ID         string       `json:"id" bson:"_id"`
	PropertyID string       `json:"property_id" bson:"property_id"`
	BookingID  string       `json:"booking_id" bson:"booking_id"`
	Interval   DateInterval `json:"interval" bson:"interval"`
	Kind       RecordKind   `json:"kind" bson:"kind"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Version    int64        `json:"version" bson:"version"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
}

// ActiveAt reports whether the record still blocks its interval at the
// given instant. Confirmed records are always active; holds are active
// until their expiry passes.
func (r *ReservationRecord) ActiveAt(now time.Time) bool {
	if r.Kind == KindConfirmed {
		return true
	}
	return r.ExpiresAt != nil && r.ExpiresAt.After(now)
}

func (r *ReservationRecord) Clone() *ReservationRecord {
	clone := *r
	if r.ExpiresAt != nil {
		expires := *r.ExpiresAt
		clone.ExpiresAt = &expires
	}
	return &clone
}
