package model

import "time"

// Restaurant represents a listing owned by a user with the OWNER role.
// Seating capacity is fixed per time slot: every slot of every day can
// hold at most TotalSeats seats in total across all active reservations.
// This struct corresponds to a row in the `restaurants` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	OwnerID      – user ID of the restaurant owner.
//	Name         – display name of the restaurant.
//	Cuisine      – cuisine category shown in search results.
//	Description  – free-form description text.
//	Image        – URL of the listing image.
//	Rating       – average rating used to rank featured listings.
//	TotalSeats   – fixed seat capacity per time slot (positive).
//	Location     – short human-readable location label.
//	Address      – street address.
//	City         – city used for search filtering.
//	OpeningTime  – opening time of day, "HH:MM" with minute granularity.
//	ClosingTime  – closing time of day, "HH:MM" with minute granularity.
//	PricePerSeat – price per reserved seat, non-negative.
//	CreatedAt    – timestamp when the listing was created.
//	UpdatedAt    – timestamp of last update.
type Restaurant struct {
	ID           uint64    `json:"id"`             // restaurants.id
	OwnerID      uint64    `json:"owner_id"`       // restaurants.owner_id
	Name         string    `json:"name"`           // restaurants.name
	Cuisine      string    `json:"cuisine"`        // restaurants.cuisine
	Description  string    `json:"description"`    // restaurants.description
	Image        string    `json:"image"`          // restaurants.image
	Rating       float64   `json:"rating"`         // restaurants.rating
	TotalSeats   uint32    `json:"total_seats"`    // restaurants.total_seats
	Location     string    `json:"location"`       // restaurants.location
	Address      string    `json:"address"`        // restaurants.address
	City         string    `json:"city"`           // restaurants.city
	OpeningTime  string    `json:"opening_time"`   // restaurants.opening_time
	ClosingTime  string    `json:"closing_time"`   // restaurants.closing_time
	PricePerSeat float64   `json:"price_per_seat"` // restaurants.price_per_seat
	CreatedAt    time.Time `json:"created_at"`     // restaurants.created_at
	UpdatedAt    time.Time `json:"updated_at"`     // restaurants.updated_at
}
