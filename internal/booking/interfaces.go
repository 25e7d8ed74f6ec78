package booking

import (
	"context"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RestaurantStore supplies the restaurant data the engine validates
// against. Implemented by repository.RestaurantRepo.
type RestaurantStore interface {
	// GetByID returns repository.ErrRestaurantNotFound for absent rows.
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// ReservationStore is the reservation ledger. Implemented by
// repository.ReservationRepo.
//
// Book must re-validate capacity and insert atomically under per-key
// mutual exclusion: no interleaving of concurrent Book calls for the
// same (restaurant, date, slot) key may leave the ACTIVE party-size sum
// above the restaurant's total seats. Cancel must check authorization
// and state and flip ACTIVE to CANCELLED in the same atomic unit.
type ReservationStore interface {
	Book(ctx context.Context, res *model.Reservation) error
	Cancel(ctx context.Context, reservationID, requesterID uint64) error
	ReservedByDate(ctx context.Context, restaurantID uint64, date string) (map[int]uint32, error)
}

// UserStore provides the customer record whose name and email are
// snapshotted onto new reservations. Implemented by repository.UserRepo.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}
