package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ReservationRepo provides access to the reservations ledger. Capacity
// is always derived from the ACTIVE rows, never stored as a counter, so
// there is exactly one source of truth and cancellation releases seats
// implicitly.
//
// The write paths (Book, Cancel) run inside transactions. Book holds a
// row-level lock on the restaurant for the duration of its
// read-recompute-write sequence, which serializes concurrent admissions
// per restaurant and closes the check-then-act race that would otherwise
// let two parties claim the same remaining seats:
//
//	request A: SUM(party_size) for the slot -> 7 of 10 taken
//	request B: SUM(party_size) for the slot -> 7 of 10 taken
//	request A: 7+3 <= 10, INSERT            -> 10 taken
//	request B: 7+3 <= 10, INSERT            -> 13 taken, OVERBOOKED
//
// With SELECT ... FOR UPDATE on the restaurant row, B's re-read blocks
// until A commits and then sees 10 taken, so B is rejected.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// ReservedByDate returns reserved seat sums for every slot of a
// restaurant on one date, keyed by slot hour. Slots without active
// reservations are simply absent from the map.
func (r *ReservationRepo) ReservedByDate(ctx context.Context, restaurantID uint64, date string) (map[int]uint32, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT time_slot, SUM(party_size)
		 FROM reservations
		 WHERE restaurant_id = ? AND date = ? AND status = 'ACTIVE'
		 GROUP BY time_slot`,
		restaurantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reserved := make(map[int]uint32)
	for rows.Next() {
		var slot int
		var sum uint32
		if err := rows.Scan(&slot, &sum); err != nil {
			return nil, err
		}
		reserved[slot] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reserved, nil
}

// Book atomically re-validates capacity and inserts the reservation.
// The caller fills RestaurantID, UserID, Date, TimeSlot, PartySize and
// the customer snapshot fields; Book computes TotalPrice from the
// locked restaurant row (price at this instant, not at display time),
// sets Status to ACTIVE and populates the generated ID and timestamps.
//
// Returns ErrRestaurantNotFound when the restaurant is gone and
// ErrCapacityExceeded when admitting the party would breach total_seats;
// in both cases nothing is written.
func (r *ReservationRepo) Book(ctx context.Context, res *model.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the restaurant row. Every admission for this restaurant
	// passes through this lock, so the capacity sum below reads
	// committed state that cannot change before our insert commits.
	var totalSeats uint32
	var pricePerSeat float64
	err = tx.QueryRowContext(ctx,
		`SELECT total_seats, price_per_seat FROM restaurants WHERE id = ? FOR UPDATE`,
		res.RestaurantID).Scan(&totalSeats, &pricePerSeat)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRestaurantNotFound
		}
		return err
	}

	var reserved uint32
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(party_size), 0)
		 FROM reservations
		 WHERE restaurant_id = ? AND date = ? AND time_slot = ? AND status = 'ACTIVE'`,
		res.RestaurantID, res.Date, res.TimeSlot).Scan(&reserved)
	if err != nil {
		return err
	}
	if reserved+res.PartySize > totalSeats {
		return ErrCapacityExceeded
	}

	res.TotalPrice = float64(res.PartySize) * pricePerSeat
	res.Status = model.ReservationActive

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations
		   (restaurant_id, user_id, date, time_slot, party_size, total_price, status, contact_info, customer_name)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		res.RestaurantID, res.UserID, res.Date, res.TimeSlot, res.PartySize,
		res.TotalPrice, res.Status, res.ContactInfo, res.CustomerName)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Cancel flips a reservation from ACTIVE to CANCELLED, the only state
// transition the lifecycle allows. The requester must be the customer
// who booked it or the owner of the restaurant it belongs to. The check
// and the update run in one transaction with the reservation row
// locked, so two concurrent cancels cannot both observe ACTIVE.
//
// Returns ErrReservationNotFound, ErrForbidden or ErrAlreadyCancelled;
// no row is mutated on any error.
func (r *ReservationRepo) Cancel(ctx context.Context, reservationID, requesterID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var bookerID, ownerID uint64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT r.user_id, r.status, rest.owner_id
		 FROM reservations r
		 JOIN restaurants rest ON rest.id = r.restaurant_id
		 WHERE r.id = ?
		 FOR UPDATE`,
		reservationID).Scan(&bookerID, &status, &ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrReservationNotFound
		}
		return err
	}
	if requesterID != bookerID && requesterID != ownerID {
		return ErrForbidden
	}
	if status == model.ReservationCancelled {
		return ErrAlreadyCancelled
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANCELLED' WHERE id = ?`,
		reservationID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReservationDetail is a reservation joined with its restaurant's name,
// returned by the listing queries for display to customers and owners.
type ReservationDetail struct {
	ID             uint64  `json:"id"`
	RestaurantID   uint64  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	UserID         uint64  `json:"user_id"`
	Date           string  `json:"date"`
	TimeSlot       int     `json:"time_slot"`
	PartySize      uint32  `json:"party_size"`
	TotalPrice     float64 `json:"total_price"`
	Status         string  `json:"status"`
	ContactInfo    string  `json:"contact_info"`
	CustomerName   string  `json:"customer_name"`
	CreatedAt      string  `json:"created_at"`
}

const detailColumns = `r.id, r.restaurant_id, rest.name, r.user_id,
	DATE_FORMAT(r.date, '%Y-%m-%d'), r.time_slot, r.party_size, r.total_price,
	r.status, r.contact_info, r.customer_name, r.created_at`

func collectDetails(rows *sql.Rows) ([]ReservationDetail, error) {
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var createdAt time.Time
		if err := rows.Scan(
			&d.ID, &d.RestaurantID, &d.RestaurantName, &d.UserID,
			&d.Date, &d.TimeSlot, &d.PartySize, &d.TotalPrice,
			&d.Status, &d.ContactInfo, &d.CustomerName, &createdAt,
		); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns all reservations made by a customer, newest first,
// including cancelled ones so the caller can partition history by
// status and date.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+detailColumns+`
		 FROM reservations r
		 JOIN restaurants rest ON rest.id = r.restaurant_id
		 WHERE r.user_id = ?
		 ORDER BY r.date DESC, r.time_slot DESC, r.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// GetByIDForUser returns one reservation belonging to the given
// customer. sql.ErrNoRows when the reservation does not exist,
// ErrForbidden when it belongs to someone else.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+detailColumns+`
		 FROM reservations r
		 JOIN restaurants rest ON rest.id = r.restaurant_id
		 WHERE r.id = ?`,
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details, err := collectDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, sql.ErrNoRows
	}
	if details[0].UserID != userID {
		return nil, ErrForbidden
	}
	return &details[0], nil
}

// ListByRestaurantForOwner returns all reservations for a restaurant
// when accessed by its owner. It verifies ownership first;
// ErrRestaurantNotFound when the restaurant does not exist,
// ErrForbidden when the caller does not own it.
func (r *ReservationRepo) ListByRestaurantForOwner(ctx context.Context, restaurantID, ownerID uint64) ([]ReservationDetail, error) {
	var actualOwnerID uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&actualOwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+detailColumns+`
		 FROM reservations r
		 JOIN restaurants rest ON rest.id = r.restaurant_id
		 WHERE r.restaurant_id = ?
		 ORDER BY r.date DESC, r.time_slot ASC, r.created_at DESC`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}
