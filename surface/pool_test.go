// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"testing"
)

func TestFramePoolGet(t *testing.T) {
	p := NewFramePool(16, 8)
	frame := p.Get()
	b := frame.Bounds()
	if b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("Get() bounds = %v, want 16x8", b)
	}
}

func TestFramePoolClearsOnGet(t *testing.T) {
	p := NewFramePool(4, 4)
	frame := p.Get()
	frame.SetRGBA(2, 2, color.RGBA{255, 0, 0, 255})
	p.Put(frame)

	got := p.Get()
	if px := got.RGBAAt(2, 2); px != (color.RGBA{}) {
		t.Errorf("recycled frame pixel = %v, want cleared", px)
	}
}

func TestFramePoolRejectsWrongSize(t *testing.T) {
	p := NewFramePool(4, 4)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 8, 8)))

	frame := p.Get()
	b := frame.Bounds()
	if b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("Get() after foreign Put = %v, want 4x4", b)
	}
}

func TestFramePoolClampsDimensions(t *testing.T) {
	p := NewFramePool(0, -3)
	b := p.Get().Bounds()
	if b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("Get() bounds = %v, want 1x1 (clamped)", b)
	}
}

func TestFramePoolWarmup(t *testing.T) {
	p := NewFramePool(2, 2)
	p.Warmup(4)
	frame := p.Get()
	if frame == nil {
		t.Fatal("Get() = nil after Warmup")
	}
}
