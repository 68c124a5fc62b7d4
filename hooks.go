// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import (
	"weak"

	"github.com/gogpu/gputypes"
)

// This file is the inbound surface the interposition layer calls. The
// tracker never calls into the graphics API and never decides when
// creation or destruction happens — it only reacts to these events,
// synchronously, on the caller's goroutine.

// DeviceCreated records dev in the device liveness table and returns its
// identity. Calling it again for the same device refreshes the liveness
// entry and returns the same identity.
func DeviceCreated[D any](t *Tracker, dev *D) Identity {
	ref := weak.Make(dev)

	t.mu.Lock()
	defer t.mu.Unlock()

	id := identifyLocked(t, dev)
	t.devices[id] = func() bool { return ref.Value() != nil }

	Logger().Debug("device tracked", "identity", uint64(id))
	return id
}

// DeviceDestroyed removes dev from the device liveness table. Entries
// owned by dev are not removed eagerly; they stop resolving as live and
// are reconciled on the next usage query. A device that was never tracked
// is a no-op.
func DeviceDestroyed[D any](t *Tracker, dev *D) {
	id, ok := lookupIdentity(t, dev)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.devices, id)

	Logger().Debug("device untracked", "identity", uint64(id))
}

// ResourceCreated records obj as a resource of the given category owned
// by dev, with a fixed byte footprint, and returns its identity. If dev
// has not been seen before, its liveness entry is armed here so the entry
// is created against a live owner regardless of hook ordering.
//
// Registering an identity that already has an entry supersedes it; an
// object is never tracked twice.
func ResourceCreated[D, T any](t *Tracker, dev *D, obj *T, category Category, size uint64) Identity {
	devRef := weak.Make(dev)
	objRef := weak.Make(obj)

	t.mu.Lock()
	defer t.mu.Unlock()

	owner := identifyLocked(t, dev)
	if _, ok := t.devices[owner]; !ok {
		t.devices[owner] = func() bool { return devRef.Value() != nil }
	}

	id := identifyLocked(t, obj)
	t.entries[id] = &entry{
		category: category,
		owner:    owner,
		bytes:    size,
		resolves: func() bool { return objRef.Value() != nil },
	}

	Logger().Debug("resource tracked",
		"identity", uint64(id), "category", category.String(), "bytes", size)
	return id
}

// ResourceDestroyed removes the entry for obj after an explicit destroy
// was observed. Destroying an object that was never tracked, or whose
// entry was already reconciled away, is a no-op.
func ResourceDestroyed[T any](t *Tracker, obj *T) {
	id, ok := lookupIdentity(t, obj)
	if !ok {
		return
	}
	t.Unregister(id)
}

// BufferCreated records buf as a buffer with the given declared byte
// length and returns its identity.
func BufferCreated[D, T any](t *Tracker, dev *D, buf *T, size uint64) Identity {
	return ResourceCreated(t, dev, buf, CategoryBuffer, BufferFootprint(size))
}

// TextureCreated records tex with a footprint computed from desc and
// returns its identity.
func TextureCreated[D, T any](t *Tracker, dev *D, tex *T, desc *gputypes.TextureDescriptor) Identity {
	return ResourceCreated(t, dev, tex, CategoryTexture, TextureFootprint(desc))
}

// QuerySetCreated records qs as a query set with count slots and returns
// its identity.
func QuerySetCreated[D, T any](t *Tracker, dev *D, qs *T, count uint32) Identity {
	return ResourceCreated(t, dev, qs, CategoryQuerySet, QuerySetFootprint(count))
}

// SurfaceConfigured records surf as a canvas surface owned by dev. The
// surface's footprint is late-bound: extent reads the currently configured
// size and is invoked on every usage query, under the tracker mutex, so it
// must be cheap and must not call back into the tracker.
//
// Reconfiguring an already-tracked surface supersedes the previous entry —
// one surface, one entry, whatever the configuration history.
func SurfaceConfigured[D, S any](t *Tracker, dev *D, surf *S, format gputypes.TextureFormat, extent func(*S) (width, height uint32)) Identity {
	devRef := weak.Make(dev)
	surfRef := weak.Make(surf)
	info := FormatOf(format)

	measure := func() (uint64, bool) {
		s := surfRef.Value()
		if s == nil {
			return 0, false
		}
		w, h := extent(s)
		return SurfaceFootprint(w, h, info), true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	owner := identifyLocked(t, dev)
	if _, ok := t.devices[owner]; !ok {
		t.devices[owner] = func() bool { return devRef.Value() != nil }
	}

	id := identifyLocked(t, surf)
	t.entries[id] = &entry{
		category: CategoryCanvasSurface,
		owner:    owner,
		measure:  measure,
		resolves: func() bool { return surfRef.Value() != nil },
	}

	Logger().Debug("surface tracked", "identity", uint64(id))
	return id
}

// SurfaceUnconfigured removes the entry for surf. Unconfiguring a surface
// that was never configured is a no-op.
func SurfaceUnconfigured[S any](t *Tracker, surf *S) {
	ResourceDestroyed(t, surf)
}
