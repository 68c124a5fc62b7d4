// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpumeter tracks live GPU resources and attributes memory to them.
//
// # Overview
//
// gpumeter is an observability layer for the GoGPU ecosystem. It records
// every graphics-API object an application creates — buffers, textures,
// samplers, bind groups, pipelines, query sets, canvas surfaces, and the
// devices that own them — and answers, at any time, how much memory is
// currently attributed to GPU-side resources, broken down by category and
// optionally scoped to one device.
//
// gpumeter never allocates GPU memory itself and never validates API
// usage. It only observes.
//
// # Quick Start
//
//	tr := gpumeter.NewTracker()
//
//	// From the instrumented creation paths:
//	gpumeter.DeviceCreated(tr, device)
//	gpumeter.BufferCreated(tr, device, buffer, 4096)
//	gpumeter.TextureCreated(tr, device, texture, desc)
//
//	// From diagnostics:
//	snap := tr.Usage()
//	fmt.Println(snap)
//
// # Lifetime Transparency
//
// The tracker holds only weak references to tracked objects and devices.
// Registering an object never keeps it reachable: if the application drops
// its last reference, the object is collected as usual and the next Usage
// call both excludes it from the report and removes its registry entry.
// Explicit destruction (ResourceDestroyed, DeviceDestroyed) removes entries
// eagerly; lazy reconciliation on the query path covers everything else.
// There is no background sweep and no timer.
//
// One allocator caveat: pointer-free objects of 16 bytes or less are
// batched into shared blocks the runtime never reclaims individually, so
// such an object may never be observed unreachable. Real API handles
// carry pointers, so this does not arise in practice.
//
// # Sizing
//
// Footprints are computed from declared descriptor state, never from the
// backend: buffers report their declared length, query sets a fixed eight
// bytes per slot, and textures a per-mip block computation that models
// block-compressed layouts exactly. Canvas surfaces are sized lazily from
// their current configuration on every query, since presentation size is
// late-bound.
//
// # Concurrency
//
// A Tracker is safe for concurrent use. Every registration, removal, and
// query holds one internal mutex for its full duration. Surface measure
// callbacks run under that mutex and must not call back into the tracker.
//
// # Logging
//
// gpumeter produces no log output by default. Call [SetLogger] to enable
// structured logging via log/slog.
package gpumeter
