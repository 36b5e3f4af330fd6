package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles vehicle catalog caching in Redis.
// The catalog is read on every booking request; vehicles change rarely
// (only the active flag moves), so a short TTL keeps staleness bounded.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL bounds how long a deactivated vehicle can still appear
// bookable to the cache path.
const VehicleCacheTTL = 30 * time.Second

const vehicleCachePrefix = "cache:vehicle:"

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	PricePerDay string `json:"price_per_day"` // Decimal string, never float
	Deposit     string `json:"deposit"`
	Active      bool   `json:"active"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on cache miss.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error) {
	key := vehicleCachePrefix + vehicleID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var vehicle CachedVehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *CachedVehicle) error {
	key := vehicleCachePrefix + vehicle.ID
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache after an admin change.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, vehicleCachePrefix+vehicleID).Err()
}
