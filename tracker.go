// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import "sync"

// entry is one live-object registry record: which object (through a weak
// resolve function), which device owns it, what it is, and what it costs.
// Entries are created whole and never mutated; removal is the only update.
type entry struct {
	// category is the fixed classification used for aggregation.
	category Category

	// owner is the identity of the owning device.
	owner Identity

	// bytes is the fixed footprint, valid when measure is nil.
	bytes uint64

	// measure computes a late-bound footprint from the object's current
	// state. Nil for fixed-size resources. Returns false once the object
	// is no longer reachable.
	measure func() (uint64, bool)

	// resolves reports whether the tracked object is still reachable.
	// Never cached by callers: it reflects current collector state.
	resolves func() bool
}

// Tracker is the process-wide resource accounting registry. It records
// every tracked object, the device that owns it, and its footprint, and
// aggregates memory usage on demand.
//
// A Tracker holds only weak references; it never extends the lifetime of
// a tracked object or its device. Construct one with [NewTracker] and
// thread it explicitly through the instrumented creation and destruction
// paths — there is no implicit package-level instance.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	// lastIdentity is the most recently assigned identity; monotone.
	lastIdentity Identity

	// ids maps weak object references to their assigned identities.
	// Keys are weak.Pointer[T] values boxed in any; entries are removed
	// by cleanup once the referent is reclaimed.
	ids map[any]Identity

	// entries is the live object table, keyed by identity.
	entries map[Identity]*entry

	// devices is the device liveness table: identity to weak resolve.
	devices map[Identity]func() bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ids:     make(map[any]Identity),
		entries: make(map[Identity]*entry),
		devices: make(map[Identity]func() bool),
	}
}

// Unregister removes the registry entry for id. Removing an absent or
// never-registered identity is a no-op: explicit destruction and lazy
// reconciliation race benignly, and both may try the same identity.
func (t *Tracker) Unregister(id Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.unregisterLocked(id)
}

// unregisterLocked removes one entry. Caller must hold t.mu.
func (t *Tracker) unregisterLocked(id Identity) {
	if _, ok := t.entries[id]; !ok {
		return
	}
	delete(t.entries, id)
	Logger().Debug("resource untracked", "identity", uint64(id))
}

// DeviceLive reports whether the device with the given identity is still
// reachable. The weak reference is resolved freshly on every call; the
// result must not be cached.
func (t *Tracker) DeviceLive(id Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.deviceLiveLocked(id)
}

// deviceLiveLocked resolves device liveness. Caller must hold t.mu.
func (t *Tracker) deviceLiveLocked(id Identity) bool {
	alive, ok := t.devices[id]
	return ok && alive()
}

// TrackedCount returns the number of registry entries currently held,
// including entries whose objects have been dropped but not yet
// reconciled. Useful for leak diagnostics and tests.
func (t *Tracker) TrackedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Usage aggregates current memory usage across all devices.
//
// Usage walks the full registry: entries whose object is no longer
// reachable, or whose owning device is gone, contribute nothing and are
// removed, so a snapshot is never inflated by abandoned objects and the
// registry cannot grow without bound. The cost is a full table scan per
// call, which is acceptable for a diagnostic path.
func (t *Tracker) Usage() *Snapshot {
	return t.usage(InvalidIdentity)
}

// DeviceUsage aggregates current memory usage for one device. A device
// with no live resources yields all-zero counters. Stale entries owned by
// other devices are still reconciled.
func (t *Tracker) DeviceUsage(device Identity) *Snapshot {
	return t.usage(device)
}

func (t *Tracker) usage(device Identity) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := newSnapshot()

	// Removal is deferred to after the walk so the table is not mutated
	// while being iterated.
	var stale []Identity

	for id, e := range t.entries {
		if !e.resolves() || !t.deviceLiveLocked(e.owner) {
			stale = append(stale, id)
			continue
		}
		if device != InvalidIdentity && e.owner != device {
			continue
		}

		size := e.bytes
		if e.measure != nil {
			measured, ok := e.measure()
			if !ok {
				stale = append(stale, id)
				continue
			}
			size = measured
		}

		snap.Resources[e.category]++
		snap.Memory[e.category] += size
		snap.Total += size
	}

	for _, id := range stale {
		delete(t.entries, id)
	}

	// Devices abandoned without an explicit destroy leave dangling
	// liveness entries; purge those on the same pass.
	for id, alive := range t.devices {
		if !alive() {
			delete(t.devices, id)
		}
	}

	if len(stale) > 0 {
		Logger().Debug("reconciled stale registry entries", "removed", len(stale))
	}

	return snap
}
