// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct {
	polls int
}

func (m *mockDevice) Poll(wait bool) { m.polls++ }
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device  *mockDevice
	queue   gpucontext.Queue
	adapter gpucontext.Adapter
	format  gputypes.TextureFormat
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		device:  &mockDevice{},
		queue:   &mockQueue{},
		adapter: &mockAdapter{},
		format:  gputypes.TextureFormatBGRA8Unorm,
	}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return m.queue }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return m.adapter }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// mockBackend implements GPUBackend for testing.
type mockBackend struct {
	presents int
	failNext bool
	closed   bool
}

func (m *mockBackend) Present(frame *image.RGBA) error {
	if m.failNext {
		m.failNext = false
		return errors.New("mock present failed")
	}
	m.presents++
	return nil
}

func (m *mockBackend) Close() error {
	m.closed = true
	return nil
}

func TestNewGPUSurfaceValidation(t *testing.T) {
	provider := newMockProvider()
	backend := &mockBackend{}

	if _, err := NewGPUSurface(nil, 8, 8, backend); err == nil {
		t.Error("NewGPUSurface(nil provider) did not fail")
	}
	if _, err := NewGPUSurface(provider, 8, 8, nil); err == nil {
		t.Error("NewGPUSurface(nil backend) did not fail")
	}

	s, err := NewGPUSurface(provider, 0, -1, backend)
	if err != nil {
		t.Fatalf("NewGPUSurface() = %v", err)
	}
	want := gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1}
	if got := s.Size(); got != want {
		t.Errorf("Size() = %+v, want %+v (clamped)", got, want)
	}
}

func TestGPUSurfacePresent(t *testing.T) {
	provider := newMockProvider()
	backend := &mockBackend{}
	s, err := NewGPUSurface(provider, 8, 8, backend)
	if err != nil {
		t.Fatalf("NewGPUSurface() = %v", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := s.Present(frame); err != nil {
		t.Fatalf("Present() = %v", err)
	}
	if backend.presents != 1 {
		t.Errorf("backend presents = %d, want 1", backend.presents)
	}
	// Present polls the device to reclaim completed work.
	if provider.device.polls != 1 {
		t.Errorf("device polls = %d, want 1", provider.device.polls)
	}

	if err := s.Present(nil); err != ErrNilFrame {
		t.Errorf("Present(nil) = %v, want ErrNilFrame", err)
	}

	backend.failNext = true
	if err := s.Present(frame); err == nil {
		t.Error("Present() with failing backend did not fail")
	}
}

func TestGPUSurfaceFormatFromProvider(t *testing.T) {
	provider := newMockProvider()
	s, err := NewGPUSurface(provider, 8, 8, &mockBackend{})
	if err != nil {
		t.Fatalf("NewGPUSurface() = %v", err)
	}
	if got := s.Format(); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want the provider's surface format", got)
	}
}

func TestGPUSurfaceClose(t *testing.T) {
	provider := newMockProvider()
	backend := &mockBackend{}
	s, err := NewGPUSurface(provider, 8, 8, backend)
	if err != nil {
		t.Fatalf("NewGPUSurface() = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !backend.closed {
		t.Error("Close() did not close the backend")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if s.Provider() != nil {
		t.Error("Provider() != nil after Close")
	}
	if err := s.Present(image.NewRGBA(image.Rect(0, 0, 8, 8))); err != ErrSurfaceClosed {
		t.Errorf("Present() after Close = %v, want ErrSurfaceClosed", err)
	}
}
