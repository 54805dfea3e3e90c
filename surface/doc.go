// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the output-surface and layer-texture
// abstractions the compositor driver binds to.
//
// OutputSurface is the presentable output target whose lifecycle the
// scheduler state machine sequences (Active → Lost → Creating → Active).
// The package ships a CPU-backed SoftwareSurface and a GPUSurface wrapper
// that receives its device from the host application via
// gpucontext.DeviceProvider; it never creates a device itself.
//
// # Registry
//
// Third-party output-surface backends register themselves by name and
// priority without requiring changes to this package:
//
//	func init() {
//	    surface.Register("vulkan", 100, vulkanFactory, vulkanAvailable)
//	}
//
//	// Later:
//	s, err := surface.NewByName("vulkan", surface.Options{Width: 800, Height: 600})
//	// or auto-select the best available:
//	s, err := surface.NewBestAvailable(surface.Options{Width: 800, Height: 600})
//
// # Layer textures
//
// TextureSet holds the shared layer textures the producer and drawer hand
// back and forth. The scheduler state machine decides who may own them;
// TextureSet records the decision and rejects accesses from the wrong
// side. It performs no locking: like the state machine, it is driven from
// a single goroutine.
package surface
