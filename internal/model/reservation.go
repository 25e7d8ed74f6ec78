package model

import "time"

// Reservation status values. A reservation starts ACTIVE and may move to
// CANCELLED exactly once; there is no other transition and rows are never
// physically deleted.
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a customer's booking of seats for one time slot of
// one restaurant on one calendar date. Capacity accounting is derived:
// the seats taken for a (restaurant, date, slot) key are always the sum
// of PartySize over its ACTIVE reservations, never a stored counter.
//
// TotalPrice is computed from the restaurant's price per seat at booking
// time and never changes afterwards, even if the restaurant's price does.
// CustomerName and ContactInfo are likewise snapshots of the booking
// user taken at creation time; later profile edits do not touch them.
//
// Fields:
//
//	ID           – primary key identifier.
//	RestaurantID – restaurant being booked.
//	UserID       – customer who made the reservation.
//	Date         – calendar date of the booking, "YYYY-MM-DD".
//	TimeSlot     – starting hour of the booked slot (0–23).
//	PartySize    – number of seats requested (positive).
//	TotalPrice   – PartySize × price per seat at creation, immutable.
//	Status       – ACTIVE or CANCELLED.
//	ContactInfo  – customer's contact snapshot at creation.
//	CustomerName – customer's display name snapshot at creation.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Reservation struct {
	ID           uint64    `json:"id"`            // reservations.id
	RestaurantID uint64    `json:"restaurant_id"` // reservations.restaurant_id
	UserID       uint64    `json:"user_id"`       // reservations.user_id
	Date         string    `json:"date"`          // reservations.date
	TimeSlot     int       `json:"time_slot"`     // reservations.time_slot
	PartySize    uint32    `json:"party_size"`    // reservations.party_size
	TotalPrice   float64   `json:"total_price"`   // reservations.total_price
	Status       string    `json:"status"`        // reservations.status
	ContactInfo  string    `json:"contact_info"`  // reservations.contact_info
	CustomerName string    `json:"customer_name"` // reservations.customer_name
	CreatedAt    time.Time `json:"created_at"`    // reservations.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // reservations.updated_at
}
