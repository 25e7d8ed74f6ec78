package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// ----- testify mocks -----

type MockRestaurantStore struct{ mock.Mock }

func (m *MockRestaurantStore) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

type MockReservationStore struct{ mock.Mock }

func (m *MockReservationStore) Book(ctx context.Context, res *model.Reservation) error {
	args := m.Called(ctx, res)
	if args.Error(0) == nil {
		res.ID = 999 // simulate DB insert
		res.Status = model.ReservationActive
	}
	return args.Error(0)
}

func (m *MockReservationStore) Cancel(ctx context.Context, reservationID, requesterID uint64) error {
	args := m.Called(ctx, reservationID, requesterID)
	return args.Error(0)
}

func (m *MockReservationStore) ReservedByDate(ctx context.Context, restaurantID uint64, date string) (map[int]uint32, error) {
	args := m.Called(ctx, restaurantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]uint32), args.Error(1)
}

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

// ----- in-memory ledger -----

// memoryStore implements all three store interfaces over maps. Its Book
// and Cancel serialize on a mutex the way the SQL implementation
// serializes on the restaurant row lock, so the concurrency properties
// of the engine can be exercised without a database.
type memoryStore struct {
	mu           sync.Mutex
	restaurants  map[uint64]*model.Restaurant
	users        map[uint64]model.User
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		restaurants:  make(map[uint64]*model.Restaurant),
		users:        make(map[uint64]model.User),
		reservations: make(map[uint64]*model.Reservation),
	}
}

func (s *memoryStore) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := s.restaurants[id]
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	cp := *rest
	return &cp, nil
}

func (s *memoryStore) GetUserByID(ctx context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *memoryStore) reservedLocked(restaurantID uint64, date string, slot int) uint32 {
	var sum uint32
	for _, r := range s.reservations {
		if r.RestaurantID == restaurantID && r.Date == date && r.TimeSlot == slot && r.Status == model.ReservationActive {
			sum += r.PartySize
		}
	}
	return sum
}

func (s *memoryStore) Book(ctx context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := s.restaurants[res.RestaurantID]
	if !ok {
		return repository.ErrRestaurantNotFound
	}
	if s.reservedLocked(res.RestaurantID, res.Date, res.TimeSlot)+res.PartySize > rest.TotalSeats {
		return repository.ErrCapacityExceeded
	}
	res.TotalPrice = float64(res.PartySize) * rest.PricePerSeat
	res.Status = model.ReservationActive
	s.nextID++
	res.ID = s.nextID
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *memoryStore) Cancel(ctx context.Context, reservationID, requesterID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[reservationID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	rest := s.restaurants[res.RestaurantID]
	if requesterID != res.UserID && (rest == nil || requesterID != rest.OwnerID) {
		return repository.ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return repository.ErrAlreadyCancelled
	}
	res.Status = model.ReservationCancelled
	return nil
}

func (s *memoryStore) ReservedByDate(ctx context.Context, restaurantID uint64, date string) (map[int]uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]uint32)
	for _, r := range s.reservations {
		if r.RestaurantID == restaurantID && r.Date == date && r.Status == model.ReservationActive {
			out[r.TimeSlot] += r.PartySize
		}
	}
	return out, nil
}

// userStoreAdapter lets memoryStore satisfy UserStore (method name clash
// with RestaurantStore.GetByID).
type userStoreAdapter struct{ s *memoryStore }

func (a userStoreAdapter) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return a.s.GetUserByID(ctx, id)
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newMemoryService(store *memoryStore) *Service {
	svc := NewService(store, store, userStoreAdapter{store})
	svc.now = fixedNow
	return svc
}

func seedBistro(store *memoryStore, totalSeats uint32, pricePerSeat float64) {
	store.restaurants[1] = &model.Restaurant{
		ID:           1,
		OwnerID:      10,
		Name:         "Trattoria Nonna",
		TotalSeats:   totalSeats,
		OpeningTime:  "09:00",
		ClosingTime:  "22:00",
		PricePerSeat: pricePerSeat,
	}
	store.users[20] = model.User{ID: 20, Name: "Dana Carter", Email: "dana@example.com", Role: model.RoleCustomer}
	store.users[21] = model.User{ID: 21, Name: "Luis Ortega", Email: "luis@example.com", Role: model.RoleCustomer}
}

func admitReq(userID uint64, partySize int) AdmitRequest {
	return AdmitRequest{
		RestaurantID: 1,
		Date:         "2024-06-01",
		TimeSlot:     12,
		PartySize:    partySize,
		UserID:       userID,
		Role:         model.RoleCustomer,
	}
}

// ----- validation and policy -----

func TestAdmit_OwnerRoleRejected(t *testing.T) {
	restaurants := new(MockRestaurantStore)
	reservations := new(MockReservationStore)
	users := new(MockUserStore)
	svc := NewService(restaurants, reservations, users)

	req := admitReq(10, 2)
	req.Role = model.RoleOwner
	_, err := svc.Admit(context.Background(), req)
	assert.ErrorIs(t, err, ErrForbidden)

	// Rejected before any storage access.
	restaurants.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	reservations.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestAdmit_ValidationRejections(t *testing.T) {
	restaurants := new(MockRestaurantStore)
	reservations := new(MockReservationStore)
	users := new(MockUserStore)
	svc := NewService(restaurants, reservations, users)
	svc.now = fixedNow

	cases := []struct {
		name   string
		mutate func(*AdmitRequest)
	}{
		{"zero party size", func(r *AdmitRequest) { r.PartySize = 0 }},
		{"negative party size", func(r *AdmitRequest) { r.PartySize = -3 }},
		{"malformed date", func(r *AdmitRequest) { r.Date = "06/01/2024" }},
		{"past date", func(r *AdmitRequest) { r.Date = "2024-04-30" }},
		{"slot below range", func(r *AdmitRequest) { r.TimeSlot = -1 }},
		{"slot above range", func(r *AdmitRequest) { r.TimeSlot = 24 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := admitReq(20, 2)
			tc.mutate(&req)
			_, err := svc.Admit(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	reservations.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestAdmit_SlotOutsideOperatingHours(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	// 08:00 is in 0..23 but before the 09:00 opening.
	req := admitReq(20, 2)
	req.TimeSlot = 8
	_, err := svc.Admit(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	// 22:00 would extend past closing.
	req.TimeSlot = 22
	_, err = svc.Admit(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdmit_RestaurantNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := newMemoryService(store)

	_, err := svc.Admit(context.Background(), admitReq(20, 2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmit_StoreFailureIsUnavailable(t *testing.T) {
	restaurants := new(MockRestaurantStore)
	reservations := new(MockReservationStore)
	users := new(MockUserStore)
	svc := NewService(restaurants, reservations, users)
	svc.now = fixedNow

	rest := &model.Restaurant{ID: 1, TotalSeats: 10, OpeningTime: "09:00", ClosingTime: "22:00", PricePerSeat: 25}
	restaurants.On("GetByID", mock.Anything, uint64(1)).Return(rest, nil)
	users.On("GetByID", mock.Anything, uint64(20)).Return(model.User{ID: 20, Name: "Dana"}, nil)
	reservations.On("Book", mock.Anything, mock.Anything).Return(context.DeadlineExceeded)

	_, err := svc.Admit(context.Background(), admitReq(20, 2))
	assert.ErrorIs(t, err, ErrUnavailable)
}

// ----- admission semantics -----

func TestAdmit_Success_SnapshotsPriceAndCustomer(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	res, err := svc.Admit(context.Background(), admitReq(20, 2))
	require.NoError(t, err)
	assert.Equal(t, model.ReservationActive, res.Status)
	assert.Equal(t, 50.0, res.TotalPrice)
	assert.Equal(t, "Dana Carter", res.CustomerName)
	assert.Equal(t, "dana@example.com", res.ContactInfo)
	assert.Equal(t, 12, res.TimeSlot)
}

func TestAdmit_PriceImmutableAfterRestaurantPriceChange(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	res, err := svc.Admit(context.Background(), admitReq(20, 2))
	require.NoError(t, err)
	require.Equal(t, 50.0, res.TotalPrice)

	// Raise the restaurant's price; the stored reservation keeps the
	// total recorded at booking time.
	store.mu.Lock()
	store.restaurants[1].PricePerSeat = 30.0
	stored := *store.reservations[res.ID]
	store.mu.Unlock()
	assert.Equal(t, 50.0, stored.TotalPrice)

	// A new booking pays the new price.
	res2, err := svc.Admit(context.Background(), admitReq(21, 2))
	require.NoError(t, err)
	assert.Equal(t, 60.0, res2.TotalPrice)
}

func TestAdmit_EndToEndCapacityScenario(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	// Existing party of 8 at (2024-06-01, slot 12).
	_, err := svc.Admit(context.Background(), admitReq(20, 8))
	require.NoError(t, err)

	// A party of 3 would exceed the 10 seats.
	_, err = svc.Admit(context.Background(), admitReq(21, 3))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// A party of 2 fills the slot exactly.
	_, err = svc.Admit(context.Background(), admitReq(21, 2))
	require.NoError(t, err)

	avail, err := svc.ListAvailability(context.Background(), 1, "2024-06-01")
	require.NoError(t, err)
	for _, sa := range avail {
		if sa.Slot == 12 {
			assert.Equal(t, 0, sa.AvailableSeats)
		}
	}
}

func TestAdmit_CancelledSeatsAreReleased(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 4, 25.0)
	svc := newMemoryService(store)

	res, err := svc.Admit(context.Background(), admitReq(20, 4))
	require.NoError(t, err)

	// Slot is full now.
	_, err = svc.Admit(context.Background(), admitReq(21, 1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Cancelling frees the seats with no extra bookkeeping.
	require.NoError(t, svc.Cancel(context.Background(), res.ID, 20))
	_, err = svc.Admit(context.Background(), admitReq(21, 4))
	assert.NoError(t, err)
}

// ----- concurrency -----

func TestAdmit_RaceForLastSeats(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 4, 25.0)
	svc := newMemoryService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Admit(context.Background(), admitReq(uint64(20+i), 3))
		}(i)
	}
	close(start)
	wg.Wait()

	// Exactly one of the two party-of-3 requests wins the 4 seats.
	var ok, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrCapacityExceeded):
			capacity++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, capacity)
}

func TestAdmit_ConcurrentAdmissionsNeverExceedCapacity(t *testing.T) {
	const seats = 10
	const attempts = 25

	store := newMemoryStore()
	seedBistro(store, seats, 25.0)
	for i := 0; i < attempts; i++ {
		store.users[uint64(100+i)] = model.User{ID: uint64(100 + i), Name: "Guest", Email: "guest@example.com"}
	}
	svc := newMemoryService(store)

	var wg sync.WaitGroup
	var succeeded int32
	var mu sync.Mutex
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if _, err := svc.Admit(context.Background(), admitReq(uint64(100+i), 1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(seats), succeeded)
	assert.LessOrEqual(t, store.reservedLocked(1, "2024-06-01", 12), uint32(seats))
}

// ----- cancellation -----

func TestCancel_AuthorizationMatrix(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	res, err := svc.Admit(context.Background(), admitReq(20, 2))
	require.NoError(t, err)

	// Another customer, not the owner: forbidden.
	assert.ErrorIs(t, svc.Cancel(context.Background(), res.ID, 21), ErrForbidden)

	// The restaurant's owner may cancel.
	assert.NoError(t, svc.Cancel(context.Background(), res.ID, 10))
}

func TestCancel_BookerMayCancelOnce(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	res, err := svc.Admit(context.Background(), admitReq(20, 2))
	require.NoError(t, err)

	assert.NoError(t, svc.Cancel(context.Background(), res.ID, 20))
	// Second cancel is an explicit error, not an idempotent success.
	assert.ErrorIs(t, svc.Cancel(context.Background(), res.ID, 20), ErrAlreadyCancelled)
}

func TestCancel_NotFound(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	svc := newMemoryService(store)

	assert.ErrorIs(t, svc.Cancel(context.Background(), 404, 20), ErrNotFound)
}

// ----- availability -----

func TestListAvailability_InvalidDate(t *testing.T) {
	restaurants := new(MockRestaurantStore)
	reservations := new(MockReservationStore)
	users := new(MockUserStore)
	svc := NewService(restaurants, reservations, users)

	_, err := svc.ListAvailability(context.Background(), 1, "not-a-date")
	assert.ErrorIs(t, err, ErrValidation)
	restaurants.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestListAvailability_RestaurantNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := newMemoryService(store)

	_, err := svc.ListAvailability(context.Background(), 7, "2024-06-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAvailability_FullCatalogWithCounts(t *testing.T) {
	restaurants := new(MockRestaurantStore)
	reservations := new(MockReservationStore)
	users := new(MockUserStore)
	svc := NewService(restaurants, reservations, users)

	rest := &model.Restaurant{ID: 1, TotalSeats: 10, OpeningTime: "09:00", ClosingTime: "22:00", PricePerSeat: 25}
	restaurants.On("GetByID", mock.Anything, uint64(1)).Return(rest, nil)
	reservations.On("ReservedByDate", mock.Anything, uint64(1), "2024-06-01").Return(map[int]uint32{
		9:  4,
		12: 10,
		13: 15, // corrupted over-booked slot must clamp to zero, not go negative
	}, nil)

	avail, err := svc.ListAvailability(context.Background(), 1, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, avail, 13)

	byHour := make(map[int]SlotAvailability, len(avail))
	for _, sa := range avail {
		byHour[sa.Slot] = sa
	}
	assert.Equal(t, 6, byHour[9].AvailableSeats)
	assert.Equal(t, "9:00 AM", byHour[9].DisplayTime)
	assert.Equal(t, 10, byHour[10].AvailableSeats)
	assert.Equal(t, 0, byHour[12].AvailableSeats)
	assert.Equal(t, "12:00 PM", byHour[12].DisplayTime)
	assert.Equal(t, 0, byHour[13].AvailableSeats)
	assert.Equal(t, "9:00 PM", byHour[21].DisplayTime)
}

func TestListAvailability_ClosedRestaurantHasNoSlots(t *testing.T) {
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	store.restaurants[1].OpeningTime = "09:00"
	store.restaurants[1].ClosingTime = "09:00"
	svc := newMemoryService(store)

	avail, err := svc.ListAvailability(context.Background(), 1, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, avail)
}

func TestReversedHoursYieldEmptyCatalog(t *testing.T) {
	// A stored closing time before the opening time must read as a
	// restaurant with no bookable slots, on both the availability and
	// the admission path.
	store := newMemoryStore()
	seedBistro(store, 10, 25.0)
	store.restaurants[1].OpeningTime = "18:00"
	store.restaurants[1].ClosingTime = "09:00"
	svc := newMemoryService(store)

	avail, err := svc.ListAvailability(context.Background(), 1, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, avail)

	req := admitReq(20, 2)
	req.TimeSlot = 18
	_, err = svc.Admit(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}
