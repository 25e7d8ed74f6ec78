package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RestaurantRepo provides CRUD and search access to the restaurants
// table. Ownership checks live here so handlers can map ErrForbidden
// and ErrRestaurantNotFound directly to HTTP responses.
type RestaurantRepo struct{ DB *sql.DB }

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{DB: db} }

const restaurantColumns = `id, owner_id, name, cuisine, description, image, rating,
	total_seats, location, address, city,
	TIME_FORMAT(opening_time, '%H:%i'), TIME_FORMAT(closing_time, '%H:%i'),
	price_per_seat, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var rest model.Restaurant
	err := row.Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &rest.Cuisine, &rest.Description,
		&rest.Image, &rest.Rating, &rest.TotalSeats, &rest.Location,
		&rest.Address, &rest.City, &rest.OpeningTime, &rest.ClosingTime,
		&rest.PricePerSeat, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

// Create inserts a new restaurant and populates the generated ID and
// timestamps on the provided model.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO restaurants
		   (owner_id, name, cuisine, description, image, rating,
		    total_seats, location, address, city, opening_time, closing_time, price_per_seat)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rest.OwnerID, rest.Name, rest.Cuisine, rest.Description, rest.Image, rest.Rating,
		rest.TotalSeats, rest.Location, rest.Address, rest.City,
		rest.OpeningTime, rest.ClosingTime, rest.PricePerSeat)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)
	created, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *created
	return nil
}

// GetByID fetches a restaurant by id. Returns ErrRestaurantNotFound
// when no row exists.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	rest, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// GetByIDAndOwner fetches a restaurant by id, verifying ownership.
// Returns ErrRestaurantNotFound when the row is absent and ErrForbidden
// when it belongs to a different owner.
func (r *RestaurantRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Restaurant, error) {
	rest, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rest.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return rest, nil
}

// ListByOwner returns all restaurants belonging to the given owner,
// newest first.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

// SearchFilter narrows the public restaurant listing. Empty fields are
// ignored; Query matches name or description, Cuisine and City match
// exactly (case-insensitive).
type SearchFilter struct {
	Query   string
	Cuisine string
	City    string
}

// Search returns restaurants matching the filter, ordered by rating
// descending so the best-reviewed listings lead the results.
func (r *RestaurantRepo) Search(ctx context.Context, f SearchFilter) ([]model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants`
	conds := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if s := strings.TrimSpace(f.Query); s != "" {
		conds = append(conds, `(name LIKE ? OR description LIKE ?)`)
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if s := strings.TrimSpace(f.Cuisine); s != "" {
		conds = append(conds, `LOWER(cuisine) = LOWER(?)`)
		args = append(args, s)
	}
	if s := strings.TrimSpace(f.City); s != "" {
		conds = append(conds, `LOWER(city) = LOWER(?)`)
		args = append(args, s)
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY rating DESC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

// ListFeatured returns the top-rated restaurants for the landing page.
func (r *RestaurantRepo) ListFeatured(ctx context.Context, limit int) ([]model.Restaurant, error) {
	if limit <= 0 {
		limit = 6
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants ORDER BY rating DESC, created_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

// Update rewrites the mutable listing fields of a restaurant owned by
// ownerID. Capacity and price changes apply to future bookings only:
// existing reservations keep their recorded total_price. Returns
// ErrRestaurantNotFound / ErrForbidden per GetByIDAndOwner.
func (r *RestaurantRepo) Update(ctx context.Context, ownerID uint64, rest *model.Restaurant) error {
	if _, err := r.GetByIDAndOwner(ctx, rest.ID, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE restaurants SET
		   name=?, cuisine=?, description=?, image=?, rating=?,
		   total_seats=?, location=?, address=?, city=?,
		   opening_time=?, closing_time=?, price_per_seat=?
		 WHERE id=? AND owner_id=?`,
		rest.Name, rest.Cuisine, rest.Description, rest.Image, rest.Rating,
		rest.TotalSeats, rest.Location, rest.Address, rest.City,
		rest.OpeningTime, rest.ClosingTime, rest.PricePerSeat,
		rest.ID, ownerID)
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *updated
	return nil
}

// Delete removes a restaurant owned by ownerID. Deletion is blocked
// while reservations reference the restaurant: the historical record
// outlives the listing, so the rows can never be orphaned silently.
// Returns ErrConflict in that case.
func (r *RestaurantRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}
	var refs int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE restaurant_id = ?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM restaurants WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		// The FK on reservations.restaurant_id backs up the count check
		// in case a booking lands between the two statements.
		if strings.Contains(err.Error(), "1451") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// ReservationCount returns the number of ACTIVE reservations for a
// restaurant, shown on public listing cards.
func (r *RestaurantRepo) ReservationCount(ctx context.Context, id uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE restaurant_id = ? AND status = 'ACTIVE'`,
		id).Scan(&n)
	return n, err
}

func collectRestaurants(rows *sql.Rows) ([]model.Restaurant, error) {
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
