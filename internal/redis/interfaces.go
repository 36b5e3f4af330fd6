package redis

import (
	"context"
	"time"
)

// VehicleLockStoreInterface defines the interface for distributed
// per-vehicle locking.
type VehicleLockStoreInterface interface {
	AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID string) error
}

// CacheStoreInterface defines the interface for vehicle catalog caching.
type CacheStoreInterface interface {
	GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error)
	SetVehicle(ctx context.Context, vehicle *CachedVehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ VehicleLockStoreInterface = (*VehicleLockStore)(nil)
	_ CacheStoreInterface       = (*CacheStore)(nil)
)
