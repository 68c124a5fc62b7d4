// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import (
	"runtime"
	"sync"
	"testing"
)

// collect runs enough GC cycles for dropped weak referents to stop
// resolving.
func collect() {
	runtime.GC()
	runtime.GC()
}

// trackTransientBuffer registers a buffer that becomes unreachable as soon
// as this function returns. Kept out of line so the caller's frame never
// holds the object.
//
//go:noinline
func trackTransientBuffer(tr *Tracker, dev *fakeDevice, size uint64) Identity {
	buf := &fakeBuffer{size: size}
	return BufferCreated(tr, dev, buf, size)
}

// trackUnderTransientDevice registers buf under a device that becomes
// unreachable as soon as this function returns.
//
//go:noinline
func trackUnderTransientDevice(tr *Tracker, buf *fakeBuffer, size uint64) Identity {
	dev := &fakeDevice{name: "transient"}
	DeviceCreated(tr, dev)
	return BufferCreated(tr, dev, buf, size)
}

// TestUsageAggregatesByCategory tests basic per-category aggregation.
func TestUsageAggregatesByCategory(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{name: "main"}
	DeviceCreated(tr, dev)

	bufA := &fakeBuffer{}
	bufB := &fakeBuffer{}
	qs := &struct{ slots int }{slots: 32}

	BufferCreated(tr, dev, bufA, 1024)
	BufferCreated(tr, dev, bufB, 512)
	QuerySetCreated(tr, dev, qs, 32)

	snap := tr.Usage()

	if got := snap.Resources[CategoryBuffer]; got != 2 {
		t.Errorf("buffer count = %d, want 2", got)
	}
	if got := snap.Memory[CategoryBuffer]; got != 1536 {
		t.Errorf("buffer bytes = %d, want 1536", got)
	}
	if got := snap.Resources[CategoryQuerySet]; got != 1 {
		t.Errorf("query set count = %d, want 1", got)
	}
	if got := snap.Memory[CategoryQuerySet]; got != 256 {
		t.Errorf("query set bytes = %d, want 256", got)
	}
	if got := snap.Total; got != 1536+256 {
		t.Errorf("total = %d, want %d", got, 1536+256)
	}

	runtime.KeepAlive(bufA)
	runtime.KeepAlive(bufB)
	runtime.KeepAlive(qs)
	runtime.KeepAlive(dev)
}

// TestUsageSnapshotIsFresh tests that snapshots are independent values.
func TestUsageSnapshotIsFresh(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{}
	buf := &fakeBuffer{}
	BufferCreated(tr, dev, buf, 100)

	first := tr.Usage()
	first.Memory[CategoryBuffer] = 999999
	first.Total = 0

	second := tr.Usage()
	if second.Memory[CategoryBuffer] != 100 || second.Total != 100 {
		t.Error("mutating one snapshot leaked into the next")
	}

	runtime.KeepAlive(buf)
	runtime.KeepAlive(dev)
}

// TestUsageExcludesCollectedObjects tests lazy reconciliation: an object
// dropped without explicit destruction vanishes from the next snapshot,
// and its registry entry is removed by that same query.
func TestUsageExcludesCollectedObjects(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{name: "main"}
	DeviceCreated(tr, dev)

	trackTransientBuffer(tr, dev, 1024)

	kept := &fakeBuffer{}
	BufferCreated(tr, dev, kept, 512)

	if got := tr.TrackedCount(); got != 2 {
		t.Fatalf("TrackedCount() = %d before GC, want 2", got)
	}

	collect()

	snap := tr.Usage()
	if got := snap.Resources[CategoryBuffer]; got != 1 {
		t.Errorf("buffer count = %d after drop, want 1", got)
	}
	if got := snap.Memory[CategoryBuffer]; got != 512 {
		t.Errorf("buffer bytes = %d after drop, want 512", got)
	}

	// The stale entry must be gone from the table, not just the report.
	if got := tr.TrackedCount(); got != 1 {
		t.Errorf("TrackedCount() = %d after reconciling query, want 1", got)
	}

	runtime.KeepAlive(kept)
	runtime.KeepAlive(dev)
}

// TestUsageExcludesObjectsOfCollectedDevice tests that an object whose
// owning device was dropped is excluded even while the object itself is
// still reachable.
func TestUsageExcludesObjectsOfCollectedDevice(t *testing.T) {
	tr := NewTracker()

	buf := &fakeBuffer{}
	trackUnderTransientDevice(tr, buf, 256)

	collect()

	snap := tr.Usage()
	if got := snap.Resources[CategoryBuffer]; got != 0 {
		t.Errorf("buffer count = %d with dead device, want 0", got)
	}
	if got := tr.TrackedCount(); got != 0 {
		t.Errorf("TrackedCount() = %d after reconciling query, want 0", got)
	}

	runtime.KeepAlive(buf)
}

// TestUsageExcludesObjectsOfDestroyedDevice tests explicit device
// teardown without explicit object teardown.
func TestUsageExcludesObjectsOfDestroyedDevice(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{name: "doomed"}
	DeviceCreated(tr, dev)

	buf := &fakeBuffer{}
	tex := &fakeTexture{label: "orphan"}
	BufferCreated(tr, dev, buf, 2048)
	ResourceCreated(tr, dev, tex, CategoryTexture, 4096)

	DeviceDestroyed(tr, dev)

	snap := tr.Usage()
	if got := snap.TotalResources(); got != 0 {
		t.Errorf("TotalResources() = %d after device destroy, want 0", got)
	}
	if snap.Total != 0 {
		t.Errorf("Total = %d after device destroy, want 0", snap.Total)
	}

	runtime.KeepAlive(buf)
	runtime.KeepAlive(tex)
	runtime.KeepAlive(dev)
}

// TestDeviceUsageFilter tests scoping a snapshot to one device.
func TestDeviceUsageFilter(t *testing.T) {
	tr := NewTracker()
	devA := &fakeDevice{name: "a"}
	devB := &fakeDevice{name: "b"}
	idA := DeviceCreated(tr, devA)
	idB := DeviceCreated(tr, devB)

	bufA := &fakeBuffer{}
	bufB1 := &fakeBuffer{}
	bufB2 := &fakeBuffer{}
	BufferCreated(tr, devA, bufA, 100)
	BufferCreated(tr, devB, bufB1, 200)
	BufferCreated(tr, devB, bufB2, 300)

	snapA := tr.DeviceUsage(idA)
	if got := snapA.Memory[CategoryBuffer]; got != 100 {
		t.Errorf("device A buffer bytes = %d, want 100", got)
	}
	if got := snapA.Resources[CategoryBuffer]; got != 1 {
		t.Errorf("device A buffer count = %d, want 1", got)
	}

	snapB := tr.DeviceUsage(idB)
	if got := snapB.Memory[CategoryBuffer]; got != 500 {
		t.Errorf("device B buffer bytes = %d, want 500", got)
	}

	all := tr.Usage()
	if got := all.Memory[CategoryBuffer]; got != 600 {
		t.Errorf("unfiltered buffer bytes = %d, want 600", got)
	}

	runtime.KeepAlive(bufA)
	runtime.KeepAlive(bufB1)
	runtime.KeepAlive(bufB2)
	runtime.KeepAlive(devA)
	runtime.KeepAlive(devB)
}

// TestDeviceUsageEmptyDevice tests that filtering to a device with no
// live resources yields all-zero counters for every category.
func TestDeviceUsageEmptyDevice(t *testing.T) {
	tr := NewTracker()
	idle := &fakeDevice{name: "idle"}
	busy := &fakeDevice{name: "busy"}
	idleID := DeviceCreated(tr, idle)
	DeviceCreated(tr, busy)

	buf := &fakeBuffer{}
	BufferCreated(tr, busy, buf, 4096)

	snap := tr.DeviceUsage(idleID)
	for _, c := range Categories() {
		bytes, ok := snap.Memory[c]
		if !ok {
			t.Errorf("Memory missing entry for %v", c)
		}
		if bytes != 0 {
			t.Errorf("Memory[%v] = %d, want 0", c, bytes)
		}
		count, ok := snap.Resources[c]
		if !ok {
			t.Errorf("Resources missing entry for %v", c)
		}
		if count != 0 {
			t.Errorf("Resources[%v] = %d, want 0", c, count)
		}
	}
	if snap.Total != 0 {
		t.Errorf("Total = %d, want 0", snap.Total)
	}

	runtime.KeepAlive(buf)
	runtime.KeepAlive(idle)
	runtime.KeepAlive(busy)
}

// TestDeviceUsageFilterStillReconciles tests that filtering does not
// suppress cleanup of stale entries owned by other devices.
func TestDeviceUsageFilterStillReconciles(t *testing.T) {
	tr := NewTracker()
	devA := &fakeDevice{name: "a"}
	devB := &fakeDevice{name: "b"}
	idA := DeviceCreated(tr, devA)
	DeviceCreated(tr, devB)

	trackTransientBuffer(tr, devB, 1024)

	collect()

	_ = tr.DeviceUsage(idA)

	if got := tr.TrackedCount(); got != 0 {
		t.Errorf("TrackedCount() = %d after filtered query, want 0", got)
	}

	runtime.KeepAlive(devA)
	runtime.KeepAlive(devB)
}

// TestUnregisterAbsentIdentity tests that unknown and double removal are
// no-ops.
func TestUnregisterAbsentIdentity(t *testing.T) {
	tr := NewTracker()

	// Never registered.
	tr.Unregister(Identity(12345))
	tr.Unregister(InvalidIdentity)

	dev := &fakeDevice{}
	buf := &fakeBuffer{}
	id := BufferCreated(tr, dev, buf, 64)

	tr.Unregister(id)
	tr.Unregister(id) // second removal: no-op

	if got := tr.TrackedCount(); got != 0 {
		t.Errorf("TrackedCount() = %d, want 0", got)
	}

	runtime.KeepAlive(buf)
	runtime.KeepAlive(dev)
}

// TestDeviceLive tests liveness resolution.
func TestDeviceLive(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{name: "probe"}
	id := DeviceCreated(tr, dev)

	if !tr.DeviceLive(id) {
		t.Error("DeviceLive() = false for a live device")
	}
	if tr.DeviceLive(Identity(9999)) {
		t.Error("DeviceLive() = true for an unknown identity")
	}

	DeviceDestroyed(tr, dev)
	if tr.DeviceLive(id) {
		t.Error("DeviceLive() = true after explicit destroy")
	}

	runtime.KeepAlive(dev)
}

// TestTrackerConcurrentAccess exercises the mutex under contention.
func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{name: "shared"}
	DeviceCreated(tr, dev)

	var wg sync.WaitGroup
	const goroutines = 32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := &fakeBuffer{}
			id := BufferCreated(tr, dev, buf, 128)
			_ = tr.Usage()
			tr.Unregister(id)
			runtime.KeepAlive(buf)
		}()
	}
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Usage()
			_ = tr.TrackedCount()
		}()
	}

	wg.Wait()

	if got := tr.TrackedCount(); got != 0 {
		t.Errorf("TrackedCount() = %d after all unregisters, want 0", got)
	}

	runtime.KeepAlive(dev)
}

// TestSnapshotString tests the human-readable summary.
func TestSnapshotString(t *testing.T) {
	tr := NewTracker()
	dev := &fakeDevice{}
	buf := &fakeBuffer{}
	BufferCreated(tr, dev, buf, 1024)

	if got, want := tr.Usage().String(), "Usage[1024 bytes, 1 resources]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	runtime.KeepAlive(buf)
	runtime.KeepAlive(dev)
}
