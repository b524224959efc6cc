// Package host owns the WebGPU objects the sprite renderer never creates itself: the instance, surface,
// adapter and device. It is what the isoview demo uses to stand in for a real host engine.
package host

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-iso/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurfaceFrame is returned by Present when no frame was acquired.
var ErrNoSurfaceFrame = errors.New("no surface frame acquired")

// Host is the minimal windowed host: one device and one configured surface.
type Host interface {
	// Context returns the device, queue and formats the renderer draws with.
	Context() renderer.HostContext

	// Resize reconfigures the surface for a new framebuffer size. Zero sizes are ignored, which happens
	// while the window is minimized.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	Resize(width, height int)

	// AcquireFrame gets the next surface texture and wraps it in a render target.
	//
	// Parameters:
	//   - clear: the color the frame is cleared to
	//
	// Returns:
	//   - renderer.RenderTarget: target whose ColorView is the surface texture view
	//   - error: error if the surface is lost or outdated; the caller should skip the frame
	AcquireFrame(clear wgpu.Color) (renderer.RenderTarget, error)

	// Present displays the acquired frame and releases the surface texture.
	//
	// Returns:
	//   - error: ErrNoSurfaceFrame if AcquireFrame was not called
	Present() error

	// DiscardFrame releases an acquired frame without presenting it.
	DiscardFrame()

	// Release destroys the surface, device and instance.
	Release()
}

type hostImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	width, height uint32

	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView

	forceFallback bool
	logger        *log.Logger
}

var _ Host = &hostImpl{}

// NewHost creates the WebGPU instance, a surface for the given descriptor and a device compatible with
// it, then configures the surface at the given size.
//
// Parameters:
//   - surfaceDescriptor: platform surface descriptor, usually from window.Window.SurfaceDescriptor
//   - width, height: initial framebuffer size
//   - options: functional options
//
// Returns:
//   - Host: the configured host
//   - error: error if no adapter or device is available
func NewHost(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...HostBuilderOption) (Host, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}
	runtime.LockOSThread()

	h := &hostImpl{
		mu:          &sync.Mutex{},
		presentMode: PresentMode(true),
		logger:      log.Default(),
	}
	for _, opt := range options {
		opt(h)
	}

	h.instance = wgpu.CreateInstance(nil)
	h.surface = h.instance.CreateSurface(surfaceDescriptor)

	a, err := h.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: h.forceFallback,
		CompatibleSurface:    h.surface,
	})
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	h.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Isoview Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	h.device = d
	h.queue = d.GetQueue()

	capabilities := h.surface.GetCapabilities(h.adapter)
	h.surfaceFormat = pickSurfaceFormat(capabilities.Formats)
	if len(capabilities.AlphaModes) > 0 {
		h.alphaMode = capabilities.AlphaModes[0]
	}
	h.presentMode = pickPresentMode(h.presentMode, capabilities.PresentModes)

	h.Resize(width, height)
	return h, nil
}

func (h *hostImpl) Context() renderer.HostContext {
	return renderer.HostContext{
		Device:      h.device,
		Queue:       h.queue,
		ColorFormat: h.surfaceFormat,
		DepthFormat: wgpu.TextureFormatDepth32Float,
	}
}

func (h *hostImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.width, h.height = uint32(width), uint32(height)
	h.surface.Configure(h.adapter, h.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      h.surfaceFormat,
		Width:       h.width,
		Height:      h.height,
		PresentMode: h.presentMode,
		AlphaMode:   h.alphaMode,
	})
	h.logger.Printf("[Host] surface configured %dx%d format=%v present=%v", h.width, h.height, h.surfaceFormat, h.presentMode)
}

func (h *hostImpl) AcquireFrame(clear wgpu.Color) (renderer.RenderTarget, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frameView != nil {
		return renderer.RenderTarget{}, errors.New("previous surface frame was not presented")
	}
	texture, err := h.surface.GetCurrentTexture()
	if err != nil {
		return renderer.RenderTarget{}, fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return renderer.RenderTarget{}, fmt.Errorf("failed to create surface view: %w", err)
	}
	h.frameTexture, h.frameView = texture, view

	return renderer.RenderTarget{
		ColorView:  view,
		Width:      h.width,
		Height:     h.height,
		ClearColor: clear,
	}, nil
}

func (h *hostImpl) Present() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frameTexture == nil {
		return ErrNoSurfaceFrame
	}
	h.surface.Present()
	h.releaseFrame()
	return nil
}

func (h *hostImpl) DiscardFrame() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseFrame()
}

func (h *hostImpl) releaseFrame() {
	if h.frameView != nil {
		h.frameView.Release()
		h.frameView = nil
	}
	if h.frameTexture != nil {
		h.frameTexture.Release()
		h.frameTexture = nil
	}
}

func (h *hostImpl) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.releaseFrame()
	if h.queue != nil {
		h.queue.Release()
		h.queue = nil
	}
	if h.device != nil {
		h.device.Release()
		h.device = nil
	}
	if h.adapter != nil {
		h.adapter.Release()
		h.adapter = nil
	}
	if h.surface != nil {
		h.surface.Release()
		h.surface = nil
	}
	if h.instance != nil {
		h.instance.Release()
		h.instance = nil
	}
}

// PresentMode maps the vsync setting onto a surface present mode.
func PresentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// pickPresentMode keeps the wanted mode when the surface supports it. Fifo is always supported.
func pickPresentMode(want wgpu.PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	for _, m := range supported {
		if m == want {
			return want
		}
	}
	return wgpu.PresentModeFifo
}

// pickSurfaceFormat prefers a non-sRGB 8-bit format: the fragment stage outputs palette colors that are
// already in display space.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return wgpu.TextureFormatBGRA8Unorm
}
