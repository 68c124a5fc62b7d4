// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpucore feeds gogpu/wgpu device lifecycle events into a
// gpumeter tracker.
//
// It is a thin interposition adapter: it wraps the wgpu entry points it
// observes, and calls the tracker hooks synchronously after each one
// returns. The tracker itself never calls into wgpu and never decides
// when creation or destruction happens.
package wgpucore

import (
	"fmt"

	"github.com/gogpu/gpumeter"
	"github.com/gogpu/wgpu/core"
	types "github.com/gogpu/gputypes"
)

// Device is a tracked logical device. It pairs the wgpu device handle with
// the tracker identity assigned to it, so callers can scope usage queries
// to this device.
type Device struct {
	id       core.DeviceID
	queue    core.QueueID
	tracker  *gpumeter.Tracker
	identity gpumeter.Identity
}

// OpenDevice requests a logical device from adapter with default limits
// and registers it with tr.
func OpenDevice(tr *gpumeter.Tracker, adapter core.AdapterID, label string) (*Device, error) {
	desc := &types.DeviceDescriptor{
		Label:          label,
		RequiredLimits: types.DefaultLimits(),
	}

	id, err := core.RequestDevice(adapter, desc)
	if err != nil {
		return nil, fmt.Errorf("wgpucore: failed to request device: %w", err)
	}

	queue, err := core.GetDeviceQueue(id)
	if err != nil {
		_ = core.DeviceDrop(id)
		return nil, fmt.Errorf("wgpucore: failed to get device queue: %w", err)
	}

	d := &Device{
		id:      id,
		queue:   queue,
		tracker: tr,
	}
	d.identity = gpumeter.DeviceCreated(tr, d)

	gpumeter.Logger().Debug("wgpu device opened", "label", label)
	return d, nil
}

// ID returns the underlying wgpu device handle.
func (d *Device) ID() core.DeviceID { return d.id }

// Queue returns the device's queue handle.
func (d *Device) Queue() core.QueueID { return d.queue }

// Identity returns the tracker identity assigned to this device, suitable
// for [gpumeter.Tracker.DeviceUsage].
func (d *Device) Identity() gpumeter.Identity { return d.identity }

// Usage returns current memory usage scoped to this device.
func (d *Device) Usage() *gpumeter.Snapshot {
	return d.tracker.DeviceUsage(d.identity)
}

// Close unregisters the device from the tracker and releases the wgpu
// device. Closing an already-closed or zero-value Device is a no-op.
func (d *Device) Close() error {
	if d == nil || d.id.IsZero() {
		return nil
	}

	gpumeter.DeviceDestroyed(d.tracker, d)

	err := core.DeviceDrop(d.id)
	d.id = core.DeviceID{}
	if err != nil {
		return fmt.Errorf("wgpucore: failed to release device: %w", err)
	}
	return nil
}
