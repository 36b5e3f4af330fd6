package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VehicleLockStore handles distributed per-vehicle locking in Redis.
// It backs the cross-instance half of booking admission: within one process
// the engine serializes on an in-memory mutex, and this lock extends the
// same guarantee across instances sharing the database.
type VehicleLockStore struct {
	client *redis.Client
}

// NewVehicleLockStore creates a new VehicleLockStore.
func NewVehicleLockStore(client *redis.Client) *VehicleLockStore {
	return &VehicleLockStore{client: client}
}

// AcquireVehicleLock attempts to acquire the lock for the given vehicle.
// Returns true if the lock was acquired, false if already held.
func (s *VehicleLockStore) AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:vehicle:%s", vehicleID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseVehicleLock releases the lock for the given vehicle.
func (s *VehicleLockStore) ReleaseVehicleLock(ctx context.Context, vehicleID string) error {
	key := fmt.Sprintf("lock:vehicle:%s", vehicleID)

	return s.client.Del(ctx, key).Err()
}
