package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/timeslot"
)

// storeTimeout bounds every store call made on behalf of a single
// request, most importantly the admission critical section: a stuck
// row lock fails the request with ErrUnavailable instead of hanging
// the server.
const storeTimeout = 5 * time.Second

// Service is the reservation engine. It composes the slot catalog
// (timeslot package), the derived capacity ledger and the serialized
// admission/cancellation paths of the ReservationStore. Service keeps
// no per-request state and is safe for concurrent use.
type Service struct {
	restaurants  RestaurantStore
	reservations ReservationStore
	users        UserStore
	now          func() time.Time
}

// NewService constructs the engine. All dependencies must be non-nil.
func NewService(restaurants RestaurantStore, reservations ReservationStore, users UserStore) *Service {
	if restaurants == nil || reservations == nil || users == nil {
		panic("nil store passed to booking.NewService")
	}
	return &Service{
		restaurants:  restaurants,
		reservations: reservations,
		users:        users,
		now:          time.Now,
	}
}

// SlotAvailability is one entry of the availability listing: a slot's
// identity (starting hour), the seats still open and a display label.
type SlotAvailability struct {
	Slot           int    `json:"slot"`
	AvailableSeats int    `json:"availableSeats"`
	DisplayTime    string `json:"displayTime"`
}

// ListAvailability enumerates the full slot catalog for a restaurant on
// a date with the remaining capacity per slot. It is a lock-free read:
// the numbers are a display aid and may be momentarily stale, the
// admission path recomputes from committed state. Past slots are
// included; graying them out for "today" is the caller's concern.
//
// Returns ErrValidation for a malformed date and ErrNotFound when the
// restaurant does not exist.
func (s *Service) ListAvailability(ctx context.Context, restaurantID uint64, date string) ([]SlotAvailability, error) {
	if _, err := timeslot.ParseDate(date); err != nil {
		return nil, ErrValidation
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}

	slots, err := timeslot.Generate(rest.OpeningTime, rest.ClosingTime)
	if err != nil {
		// Hours are validated on write; a bad value here is data
		// corruption, not caller error.
		return nil, unavailable(err)
	}

	reserved, err := s.reservations.ReservedByDate(ctx, restaurantID, date)
	if err != nil {
		return nil, unavailable(err)
	}

	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		available := int(rest.TotalSeats) - int(reserved[slot.Hour()])
		if available < 0 {
			// Over-booked historical data must not surface as a
			// negative count.
			available = 0
		}
		out = append(out, SlotAvailability{
			Slot:           slot.Hour(),
			AvailableSeats: available,
			DisplayTime:    slot.Label(),
		})
	}
	return out, nil
}

// AdmitRequest carries one booking attempt. Role is the verified role
// of the requesting user as established by the auth layer.
type AdmitRequest struct {
	RestaurantID uint64
	Date         string
	TimeSlot     int
	PartySize    int
	UserID       uint64
	Role         string
}

// Admit validates the request and, if it is well-formed, hands it to
// the store's serialized book operation. On success exactly one ACTIVE
// reservation row exists with the price and customer snapshot taken at
// this instant; on any error no row was created.
//
// Policy: only customers book. Owners are rejected with ErrForbidden
// regardless of capacity.
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (*model.Reservation, error) {
	if req.Role != model.RoleCustomer {
		return nil, ErrForbidden
	}
	if req.PartySize <= 0 {
		return nil, ErrValidation
	}
	day, err := timeslot.ParseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}
	if timeslot.IsPast(day, s.now()) {
		return nil, ErrValidation
	}
	if req.TimeSlot < 0 || req.TimeSlot > 23 {
		return nil, ErrValidation
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rest, err := s.restaurants.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}

	// The slot must exist in the catalog implied by the restaurant's
	// hours; an in-range hour outside opening times is still invalid.
	slots, err := timeslot.Generate(rest.OpeningTime, rest.ClosingTime)
	if err != nil {
		return nil, unavailable(err)
	}
	if _, ok := timeslot.ByHour(slots, req.TimeSlot); !ok {
		return nil, ErrValidation
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, unavailable(err)
	}

	res := &model.Reservation{
		RestaurantID: req.RestaurantID,
		UserID:       req.UserID,
		Date:         req.Date,
		TimeSlot:     req.TimeSlot,
		PartySize:    uint32(req.PartySize),
		// Snapshot of the booking-time identity; later profile edits
		// must not rewrite history.
		CustomerName: user.Name,
		ContactInfo:  user.Email,
	}

	// Critical section: Book locks the restaurant row, recomputes the
	// reserved sum from committed state, prices the reservation and
	// inserts, all in one transaction. The surrounding deadline turns
	// a stuck lock into ErrUnavailable with no partial write.
	if err := s.reservations.Book(ctx, res); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, ErrCapacityExceeded
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return nil, ErrNotFound
		default:
			return nil, unavailable(err)
		}
	}
	return res, nil
}

// Cancel transitions a reservation from ACTIVE to CANCELLED on behalf
// of the booking customer or the restaurant's owner. The seats return
// to the ledger implicitly: capacity is derived from ACTIVE rows, so
// no separate release bookkeeping exists.
//
// Returns ErrNotFound, ErrForbidden, ErrAlreadyCancelled or
// ErrUnavailable; the reservation is untouched on every error.
func (s *Service) Cancel(ctx context.Context, reservationID, requesterID uint64) error {
	if reservationID == 0 || requesterID == 0 {
		return ErrValidation
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.reservations.Cancel(ctx, reservationID, requesterID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrForbidden):
			return ErrForbidden
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return ErrAlreadyCancelled
		default:
			return unavailable(err)
		}
	}
	return nil
}

// unavailable folds storage and timeout failures into the retryable
// ErrUnavailable while keeping the cause on the chain for logs.
func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}
