// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"sync"
)

// FramePool manages reusable frame buffers of a fixed size. Drawers that
// produce a fresh *image.RGBA every frame can rent buffers here instead
// of allocating per draw.
//
// Usage:
//
//	pool := surface.NewFramePool(w, h)
//	frame := pool.Get()
//	defer pool.Put(frame)
//	// render into frame, Present it...
type FramePool struct {
	width, height int
	pool          sync.Pool
}

// NewFramePool creates a pool of width×height frames.
// Dimensions below 1 are clamped to 1.
func NewFramePool(width, height int) *FramePool {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	p := &FramePool{width: width, height: height}
	p.pool.New = func() any {
		return image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	}
	return p
}

// Get retrieves a frame from the pool. The frame is cleared to
// transparent black and ready for use.
func (p *FramePool) Get() *image.RGBA {
	frame := p.pool.Get().(*image.RGBA)
	clear(frame.Pix)
	return frame
}

// Put returns a frame to the pool for reuse. Nil frames and frames of
// the wrong size are dropped.
func (p *FramePool) Put(frame *image.RGBA) {
	if frame == nil {
		return
	}
	b := frame.Bounds()
	if b.Dx() != p.width || b.Dy() != p.height {
		return
	}
	p.pool.Put(frame)
}

// Warmup pre-allocates frames to avoid allocation during the first few
// draws. Call during initialization if allocation-free steady state is
// required from the start.
func (p *FramePool) Warmup(count int) {
	frames := make([]*image.RGBA, count)
	for i := 0; i < count; i++ {
		frames[i] = p.Get()
	}
	for i := 0; i < count; i++ {
		p.Put(frames[i])
	}
}
