// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/compositor"
	"github.com/gogpu/gputypes"
)

// Texture errors.
var (
	// ErrWrongOwner is returned when a side accesses or releases layer
	// textures it does not currently own.
	ErrWrongOwner = errors.New("surface: layer textures held by another side")

	// ErrTextureSetClosed is returned when using a closed texture set.
	ErrTextureSetClosed = errors.New("surface: texture set is closed")
)

// Texture represents one GPU layer texture.
// Implementations wrap the underlying GPU resource.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureDescriptor describes parameters for creating a layer texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat
}

// DefaultTextureDescriptor returns a descriptor with the standard RGBA
// layer format.
func DefaultTextureDescriptor(width, height uint32) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// Allocator creates a texture from a descriptor. GPU hosts allocate on
// their device; tests and headless runs use NewSoftwareTexture.
type Allocator func(desc TextureDescriptor) (Texture, error)

// TextureSet holds the shared layer textures the producer and drawer hand
// back and forth.
//
// The scheduler state machine arbitrates ownership; TextureSet records the
// machine's decisions and rejects accesses from the side that does not
// currently own the textures. Like the state machine it is single-threaded:
// the driver serializes all calls.
type TextureSet struct {
	textures []Texture
	owner    compositor.TextureState
	closed   bool
}

// NewTextureSet allocates count layer textures through alloc.
// The set starts unlocked: neither side owns the textures.
func NewTextureSet(alloc Allocator, desc TextureDescriptor, count int) (*TextureSet, error) {
	if alloc == nil {
		return nil, errors.New("surface: nil allocator")
	}
	if count < 1 {
		count = 1
	}
	ts := &TextureSet{owner: compositor.TextureUnlocked}
	for i := 0; i < count; i++ {
		tex, err := alloc(desc)
		if err != nil {
			ts.Close()
			return nil, fmt.Errorf("surface: allocating layer texture %d: %w", i, err)
		}
		ts.textures = append(ts.textures, tex)
	}
	return ts, nil
}

// Owner returns which side currently holds the textures.
func (ts *TextureSet) Owner() compositor.TextureState {
	return ts.owner
}

// AcquireForProducer transfers the textures to the producer. Legal from
// the unlocked state or from a stalled drawer hold; the state machine's
// texture-reclaim rule decides when the latter is safe.
func (ts *TextureSet) AcquireForProducer() error {
	if ts.closed {
		return ErrTextureSetClosed
	}
	if ts.owner == compositor.TextureAcquiredByProducer {
		return ErrWrongOwner
	}
	ts.owner = compositor.TextureAcquiredByProducer
	return nil
}

// AcquireForDrawer transfers the textures to the drawer. This mirrors the
// commit transition: applying a commit always leaves the drawer holding
// the textures for the frame it is about to present.
func (ts *TextureSet) AcquireForDrawer() error {
	if ts.closed {
		return ErrTextureSetClosed
	}
	ts.owner = compositor.TextureAcquiredByDrawer
	return nil
}

// ReleaseFromDrawer returns drawer-held textures to the unlocked state,
// as happens after a draw.
func (ts *TextureSet) ReleaseFromDrawer() error {
	if ts.closed {
		return ErrTextureSetClosed
	}
	if ts.owner != compositor.TextureAcquiredByDrawer {
		return ErrWrongOwner
	}
	ts.owner = compositor.TextureUnlocked
	return nil
}

// Textures returns the layer textures for the side given as owner.
// Returns ErrWrongOwner unless owner matches the current holder.
func (ts *TextureSet) Textures(owner compositor.TextureState) ([]Texture, error) {
	if ts.closed {
		return nil, ErrTextureSetClosed
	}
	if owner != ts.owner {
		return nil, ErrWrongOwner
	}
	return ts.textures, nil
}

// Len returns the number of textures in the set.
func (ts *TextureSet) Len() int {
	return len(ts.textures)
}

// Close destroys all textures. Close is idempotent.
func (ts *TextureSet) Close() {
	if ts.closed {
		return
	}
	ts.closed = true
	for _, tex := range ts.textures {
		tex.Destroy()
	}
	ts.textures = nil
}

// SoftwareTexture is a CPU-backed Texture used by headless runs and
// tests.
type SoftwareTexture struct {
	pixels *image.RGBA
	format gputypes.TextureFormat
}

// NewSoftwareTexture allocates a CPU-backed texture for the descriptor.
// It satisfies Allocator.
func NewSoftwareTexture(desc TextureDescriptor) (Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, errors.New("surface: texture dimensions must be non-zero")
	}
	format := desc.Format
	if format == 0 {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	return &SoftwareTexture{
		pixels: image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height))),
		format: format,
	}, nil
}

// Width returns the texture width in pixels.
func (t *SoftwareTexture) Width() uint32 { return uint32(t.pixels.Bounds().Dx()) }

// Height returns the texture height in pixels.
func (t *SoftwareTexture) Height() uint32 { return uint32(t.pixels.Bounds().Dy()) }

// Format returns the texture pixel format.
func (t *SoftwareTexture) Format() gputypes.TextureFormat { return t.format }

// Pixels returns the backing pixel buffer.
func (t *SoftwareTexture) Pixels() *image.RGBA { return t.pixels }

// Destroy releases the pixel buffer.
func (t *SoftwareTexture) Destroy() { t.pixels = nil }

// Verify SoftwareTexture implements Texture.
var _ Texture = (*SoftwareTexture)(nil)
