// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationBookedEvent is published when a table reservation is
// admitted. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type ReservationBookedEvent struct {
	ReservationID  uint64  `json:"reservation_id"`
	RestaurantID   uint64  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	UserID         uint64  `json:"user_id"`
	CustomerName   string  `json:"customer_name"`
	Date           string  `json:"date"`
	TimeSlot       int     `json:"time_slot"`
	DisplayTime    string  `json:"display_time"`
	PartySize      uint32  `json:"party_size"`
	TotalPrice     float64 `json:"total_price"`
	BookedAt       string  `json:"booked_at"`
}
