package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental/internal/domain"
	"rental/internal/redis"
	"rental/internal/repository"
)

// VehicleService manages the vehicle catalog. Reads go through the Redis
// cache when one is configured; admin writes invalidate it.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	cacheStore  redis.CacheStoreInterface // Optional
}

// Ensure the catalog contract consumed by the booking engine is satisfied.
var _ VehicleCatalog = (*VehicleService)(nil)

// NewVehicleService creates a new VehicleService. cacheStore may be nil.
func NewVehicleService(vehicleRepo repository.VehicleRepository, cacheStore redis.CacheStoreInterface) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		cacheStore:  cacheStore,
	}
}

// AddVehicleRequest contains the parameters for adding a vehicle.
type AddVehicleRequest struct {
	Name        string
	Category    domain.VehicleCategory
	PricePerDay decimal.Decimal
	Deposit     decimal.Decimal
}

// AddVehicle adds a new active vehicle to the catalog.
func (s *VehicleService) AddVehicle(ctx context.Context, req AddVehicleRequest) (*domain.Vehicle, error) {
	if req.Name == "" {
		return nil, ErrInvalidVehicleName
	}
	if req.Category != domain.VehicleCategoryCar && req.Category != domain.VehicleCategoryBike {
		return nil, ErrInvalidVehicleCategory
	}
	if req.PricePerDay.IsNegative() || req.Deposit.IsNegative() {
		return nil, ErrInvalidPrice
	}

	vehicle := &domain.Vehicle{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Category:    req.Category,
		PricePerDay: req.PricePerDay,
		Deposit:     req.Deposit,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID, preferring the cache.
func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, ErrInvalidVehicleID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetVehicle(ctx, id)
		// Cache errors fall through to the repository.
		if err == nil && cached != nil {
			if vehicle, ok := vehicleFromCache(cached); ok {
				return vehicle, nil
			}
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetVehicle(ctx, vehicleToCache(vehicle))
	}

	return vehicle, nil
}

// ListVehicles retrieves vehicles, optionally only active ones.
func (s *VehicleService) ListVehicles(ctx context.Context, activeOnly bool) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx, activeOnly)
}

// SetActive flips the bookable flag of a vehicle and invalidates the cache
// so admission stops (or resumes) seeing it within one lookup.
func (s *VehicleService) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return ErrInvalidVehicleID
	}

	if err := s.vehicleRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateVehicle(ctx, id)
	}

	return nil
}

func vehicleToCache(v *domain.Vehicle) *redis.CachedVehicle {
	return &redis.CachedVehicle{
		ID:          v.ID,
		Name:        v.Name,
		Category:    string(v.Category),
		PricePerDay: v.PricePerDay.String(),
		Deposit:     v.Deposit.String(),
		Active:      v.Active,
	}
}

func vehicleFromCache(c *redis.CachedVehicle) (*domain.Vehicle, bool) {
	pricePerDay, err := decimal.NewFromString(c.PricePerDay)
	if err != nil {
		return nil, false
	}
	deposit, err := decimal.NewFromString(c.Deposit)
	if err != nil {
		return nil, false
	}

	return &domain.Vehicle{
		ID:          c.ID,
		Name:        c.Name,
		Category:    domain.VehicleCategory(c.Category),
		PricePerDay: pricePerDay,
		Deposit:     deposit,
		Active:      c.Active,
	}, true
}
