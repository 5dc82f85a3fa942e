package model

// Property is the read-only view of a listing owned by the external
// property catalog. Only the attributes the reservation core needs are
// carried here.
type Property struct {
	ID           string `json:"id"`
	HostID       string `json:"host_id"`
	MaxGuests    int    `json:"max_guests"`
	IsActive     bool   `json:"is_active"`
	NightlyPrice int64  `json:"nightly_price"`
	Currency     string `json:"currency"`
}
