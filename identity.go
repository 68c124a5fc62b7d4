// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import (
	"runtime"
	"weak"
)

// Identity is a stable integer tag assigned to a tracked object. It is
// distinct from the object's storage address: identities are allocated
// monotonically, assigned once per distinct object, and never reused.
type Identity uint64

// InvalidIdentity is the zero value. No object is ever assigned it; it is
// also the "no device" filter value for [Tracker.DeviceUsage].
const InvalidIdentity Identity = 0

// Identify returns the identity of obj, assigning the next integer if obj
// has not been seen before. Identify always succeeds.
//
// The association is held through a weak reference, so identifying an
// object never keeps it reachable, and re-lookup is O(1) for as long as
// the object is alive.
func Identify[T any](t *Tracker, obj *T) Identity {
	ref := weak.Make(obj)

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.ids[ref]; ok {
		return id
	}
	return assignIdentityLocked(t, obj, ref)
}

// identifyLocked is Identify for callers that already hold t.mu.
func identifyLocked[T any](t *Tracker, obj *T) Identity {
	ref := weak.Make(obj)
	if id, ok := t.ids[ref]; ok {
		return id
	}
	return assignIdentityLocked(t, obj, ref)
}

// assignIdentityLocked allocates the next identity for obj and records it.
// Caller must hold t.mu, and obj must not already be in the table.
func assignIdentityLocked[T any](t *Tracker, obj *T, ref weak.Pointer[T]) Identity {
	t.lastIdentity++
	id := t.lastIdentity
	t.ids[ref] = id

	// Drop the association once obj is reclaimed so the identity table
	// cannot grow without bound. The cleanup captures only the weak
	// reference, never obj itself.
	runtime.AddCleanup(obj, t.forgetIdentity, any(ref))

	return id
}

// lookupIdentity returns the identity previously assigned to obj, or
// (InvalidIdentity, false) if obj was never identified.
func lookupIdentity[T any](t *Tracker, obj *T) (Identity, bool) {
	ref := weak.Make(obj)

	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.ids[ref]
	if !ok {
		return InvalidIdentity, false
	}
	return id, true
}

// forgetIdentity removes one identity association. Runs on the cleanup
// goroutine after the tagged object has been reclaimed.
func (t *Tracker) forgetIdentity(key any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.ids, key)
}
