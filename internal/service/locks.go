package service

import "sync"

// VehicleLocks provides in-process mutual exclusion scoped to one vehicle.
// Booking admission must run its overlap-check-then-insert atomically per
// vehicle; requests for different vehicles never block each other.
// Entries are reference-counted so the map does not grow with the catalog.
type VehicleLocks struct {
	mu    sync.Mutex
	locks map[string]*vehicleLock
}

type vehicleLock struct {
	mu   sync.Mutex
	refs int
}

// NewVehicleLocks creates a new VehicleLocks.
func NewVehicleLocks() *VehicleLocks {
	return &VehicleLocks{locks: make(map[string]*vehicleLock)}
}

// Lock acquires the lock for the given vehicle, blocking until it is free.
func (l *VehicleLocks) Lock(vehicleID string) {
	l.mu.Lock()
	entry, ok := l.locks[vehicleID]
	if !ok {
		entry = &vehicleLock{}
		l.locks[vehicleID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for the given vehicle.
func (l *VehicleLocks) Unlock(vehicleID string) {
	l.mu.Lock()
	entry := l.locks[vehicleID]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, vehicleID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
