package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rental/internal/domain"
	"rental/internal/redis"
	"rental/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32

	// Error injection
	CreateError  error
	GetByIDError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetAll(ctx context.Context, activeOnly bool) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if activeOnly && !v.Active {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockVehicleRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Active = active
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
// Bookings are kept in insertion order so ListByRequester reflects
// creation order the way the real store does.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
	byID     map[string]*domain.Booking

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32
	FindOverlappingCount  int32

	// Error injection
	CreateError          error
	UpdateStatusError    error
	FindOverlappingError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		byID: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
	m.byID[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
	m.byID[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]*domain.Booking, error) {
	atomic.AddInt32(&m.FindOverlappingCount, 1)
	if m.FindOverlappingError != nil {
		return nil, m.FindOverlappingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.VehicleID != vehicleID || !b.IsActive() {
			continue
		}
		if b.Overlaps(start, end) {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.RequesterID == requesterID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.byID[id]
	if !ok || booking.Status != from {
		// Compare-and-set miss, same as the SQL row filter.
		return repository.ErrNotFound
	}
	booking.Status = to
	return nil
}

// GetBooking returns the booking by ID (for test assertions).
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount   int32
	MarkPaidCallCount int32

	// Error injection
	CreateError   error
	MarkPaidError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.Reference == reference {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	atomic.AddInt32(&m.MarkPaidCallCount, 1)
	if m.MarkPaidError != nil {
		return m.MarkPaidError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payment.Paid {
		// Monotonic: already paid stays paid with its original timestamp.
		return nil
	}
	payment.Paid = true
	payment.PaidAt = paidAt
	return nil
}

// GetPayment returns the payment by ID (for test assertions).
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// ──────────────────────────────────────────────
// MOCK VEHICLE LOCK STORE
// ──────────────────────────────────────────────

// MockVehicleLockStore is an in-memory stand-in for the Redis vehicle lock.
type MockVehicleLockStore struct {
	mu    sync.Mutex
	held  map[string]bool
	Fails error // Error injection for Acquire
}

// NewMockVehicleLockStore creates a new mock lock store.
func NewMockVehicleLockStore() *MockVehicleLockStore {
	return &MockVehicleLockStore{held: make(map[string]bool)}
}

func (m *MockVehicleLockStore) AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error) {
	if m.Fails != nil {
		return false, m.Fails
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[vehicleID] {
		return false, nil
	}
	m.held[vehicleID] = true
	return true, nil
}

func (m *MockVehicleLockStore) ReleaseVehicleLock(ctx context.Context, vehicleID string) error {
	// The redis client refuses commands on a done context.
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, vehicleID)
	return nil
}

// Held reports whether the distributed lock for a vehicle is currently taken.
func (m *MockVehicleLockStore) Held(vehicleID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[vehicleID]
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory stand-in for the Redis vehicle cache.
type MockCacheStore struct {
	mu       sync.RWMutex
	vehicles map[string]*redis.CachedVehicle

	// Counters for verification
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{vehicles: make(map[string]*redis.CachedVehicle)}
}

func (m *MockCacheStore) GetVehicle(ctx context.Context, vehicleID string) (*redis.CachedVehicle, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[vehicleID]
	if !ok {
		return nil, nil // Cache miss
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockCacheStore) SetVehicle(ctx context.Context, vehicle *redis.CachedVehicle) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockCacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vehicles, vehicleID)
	return nil
}
