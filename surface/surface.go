// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
)

// Surface errors.
var (
	// ErrSurfaceClosed is returned when presenting to a closed surface.
	ErrSurfaceClosed = errors.New("surface: output surface is closed")

	// ErrNilFrame is returned when presenting a nil frame.
	ErrNilFrame = errors.New("surface: nil frame")
)

// OutputSurface is the presentable output target of the compositor.
//
// A surface may be lost at any time (device reset, window teardown); the
// driver reports the loss to the scheduler state machine, which sequences
// creation of a replacement before any further draw. Surfaces are NOT
// thread-safe: each surface belongs to the drawer side and must be used
// from a single goroutine.
type OutputSurface interface {
	// Size returns the surface dimensions.
	Size() gputypes.Extent3D

	// Format returns the surface pixel format.
	Format() gputypes.TextureFormat

	// Present displays the given frame. The frame is copied or uploaded;
	// the caller may reuse it after Present returns.
	// Returns an error if the surface is closed or presentation fails.
	Present(frame *image.RGBA) error

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be used.
	// Close is idempotent; multiple calls are safe.
	Close() error
}

// SnapshotSurface is an optional interface for surfaces whose last
// presented frame can be read back.
type SnapshotSurface interface {
	OutputSurface

	// Snapshot returns a copy of the most recently presented frame.
	// This may be slow for GPU surfaces as it requires readback.
	Snapshot() *image.RGBA
}

// ResizableSurface is an optional interface for surfaces that support
// resizing.
type ResizableSurface interface {
	OutputSurface

	// Resize changes the surface dimensions. Existing content may be
	// discarded or preserved depending on implementation.
	Resize(width, height int) error
}
