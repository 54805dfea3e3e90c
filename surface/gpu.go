// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// GPUBackend is the interface GPU presentation implementations must
// provide. This abstraction keeps the package independent of specific GPU
// libraries: the host application implements GPUBackend on top of its own
// swapchain handling and injects it together with its device provider.
type GPUBackend interface {
	// Present uploads and displays the frame.
	Present(frame *image.RGBA) error

	// Close releases GPU resources.
	Close() error
}

// GPUSurface is a GPU-accelerated output surface wrapper.
//
// The device comes from the host application via gpucontext.DeviceProvider;
// GPUSurface never creates one. This enables shared GPU resources between
// the compositor and the host, and consistent resource management across
// the stack.
type GPUSurface struct {
	provider gpucontext.DeviceProvider
	backend  GPUBackend
	width    uint32
	height   uint32
	closed   bool
}

// NewGPUSurface creates a GPU surface with the given provider and backend.
// Returns an error if either is nil.
func NewGPUSurface(provider gpucontext.DeviceProvider, width, height int, backend GPUBackend) (*GPUSurface, error) {
	if provider == nil {
		return nil, errors.New("surface: DeviceProvider cannot be nil")
	}
	if backend == nil {
		return nil, errors.New("surface: GPUBackend cannot be nil")
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &GPUSurface{
		provider: provider,
		backend:  backend,
		width:    uint32(width),
		height:   uint32(height),
	}, nil
}

// Size returns the surface dimensions.
func (s *GPUSurface) Size() gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              s.width,
		Height:             s.height,
		DepthOrArrayLayers: 1,
	}
}

// Format returns the swapchain format reported by the device provider.
func (s *GPUSurface) Format() gputypes.TextureFormat {
	return s.provider.SurfaceFormat()
}

// Present uploads and displays the frame through the backend, then polls
// the device so completed GPU work is reclaimed.
func (s *GPUSurface) Present(frame *image.RGBA) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	if err := s.backend.Present(frame); err != nil {
		return err
	}
	if dev, ok := s.provider.Device().(interface{ Poll(wait bool) }); ok {
		dev.Poll(false)
	}
	return nil
}

// Provider returns the device provider the surface was created with.
// Returns nil if the surface is closed.
func (s *GPUSurface) Provider() gpucontext.DeviceProvider {
	if s.closed {
		return nil
	}
	return s.provider
}

// Close releases the backend's GPU resources.
func (s *GPUSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

// Verify GPUSurface implements OutputSurface.
var _ OutputSurface = (*GPUSurface)(nil)
