package host

import (
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestPresentMode(t *testing.T) {
	if got := PresentMode(true); got != wgpu.PresentModeFifo {
		t.Errorf("PresentMode(true) = %v, want Fifo", got)
	}
	if got := PresentMode(false); got != wgpu.PresentModeImmediate {
		t.Errorf("PresentMode(false) = %v, want Immediate", got)
	}
}

func TestPickPresentMode(t *testing.T) {
	tests := []struct {
		name      string
		want      wgpu.PresentMode
		supported []wgpu.PresentMode
		expected  wgpu.PresentMode
	}{
		{"supported", wgpu.PresentModeImmediate, []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate}, wgpu.PresentModeImmediate},
		{"unsupported falls back to fifo", wgpu.PresentModeMailbox, []wgpu.PresentMode{wgpu.PresentModeFifo}, wgpu.PresentModeFifo},
		{"empty list", wgpu.PresentModeImmediate, nil, wgpu.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickPresentMode(tt.want, tt.supported); got != tt.expected {
				t.Errorf("pickPresentMode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPickSurfaceFormat(t *testing.T) {
	tests := []struct {
		name     string
		formats  []wgpu.TextureFormat
		expected wgpu.TextureFormat
	}{
		{"prefers unorm", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatBGRA8Unorm},
		{"first when no unorm", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatRGBA16Float},
		{"empty", nil, wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickSurfaceFormat(tt.formats); got != tt.expected {
				t.Errorf("pickSurfaceFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewHostRejectsNilDescriptor(t *testing.T) {
	if _, err := NewHost(nil, 640, 480); err == nil {
		t.Fatal("expected error for nil surface descriptor")
	}
}

func TestPresentWithoutFrame(t *testing.T) {
	h := &hostImpl{mu: &sync.Mutex{}}
	if err := h.Present(); err != ErrNoSurfaceFrame {
		t.Fatalf("Present() = %v, want ErrNoSurfaceFrame", err)
	}
}
