package model

// AvailabilityResponse reports the sub-ranges of the queried window that
// are blocked by active reservations. Ranges are sorted, merged, and
// clipped to the window; anything not listed is open.
type AvailabilityResponse struct {
	PropertyID  string         `json:"property_id"`
	Window      DateInterval   `json:"window"`
	Unavailable []DateInterval `json:"unavailable"`
}
