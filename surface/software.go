// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

func init() {
	Register("software", 10, func(opts Options) (OutputSurface, error) {
		return NewSoftwareSurface(opts.Width, opts.Height), nil
	}, nil)
}

// SoftwareSurface is a CPU-backed output surface presenting into an
// in-memory RGBA framebuffer. It is always available and serves headless
// runs and tests.
type SoftwareSurface struct {
	framebuffer *image.RGBA
	presents    int
	closed      bool
}

// NewSoftwareSurface creates a software surface of the given size.
// Non-positive dimensions are clamped to 1.
func NewSoftwareSurface(width, height int) *SoftwareSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &SoftwareSurface{
		framebuffer: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Size returns the surface dimensions.
func (s *SoftwareSurface) Size() gputypes.Extent3D {
	b := s.framebuffer.Bounds()
	return gputypes.Extent3D{
		Width:              uint32(b.Dx()),
		Height:             uint32(b.Dy()),
		DepthOrArrayLayers: 1,
	}
}

// Format returns the surface pixel format.
func (s *SoftwareSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Present copies the frame into the framebuffer, scaling when the sizes
// differ.
func (s *SoftwareSurface) Present(frame *image.RGBA) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	dst := s.framebuffer.Bounds()
	src := frame.Bounds()
	if dst.Dx() == src.Dx() && dst.Dy() == src.Dy() {
		draw.Draw(s.framebuffer, dst, frame, src.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(s.framebuffer, dst, frame, src, draw.Src, nil)
	}
	s.presents++
	return nil
}

// Snapshot returns a copy of the current framebuffer contents.
func (s *SoftwareSurface) Snapshot() *image.RGBA {
	b := s.framebuffer.Bounds()
	out := image.NewRGBA(b)
	copy(out.Pix, s.framebuffer.Pix)
	return out
}

// Resize replaces the framebuffer with one of the new size.
// Existing content is discarded.
func (s *SoftwareSurface) Resize(width, height int) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	s.framebuffer = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// PresentCount returns how many frames have been presented.
func (s *SoftwareSurface) PresentCount() int {
	return s.presents
}

// Close releases the framebuffer.
func (s *SoftwareSurface) Close() error {
	s.closed = true
	return nil
}

// Verify SoftwareSurface implements the surface interfaces.
var (
	_ OutputSurface    = (*SoftwareSurface)(nil)
	_ SnapshotSurface  = (*SoftwareSurface)(nil)
	_ ResizableSurface = (*SoftwareSurface)(nil)
)
