package host

import "log"

// HostBuilderOption is a functional option for configuring a Host.
type HostBuilderOption func(h *hostImpl)

// WithVSync selects Fifo presentation when enabled and Immediate otherwise.
func WithVSync(enabled bool) HostBuilderOption {
	return func(h *hostImpl) {
		h.presentMode = PresentMode(enabled)
	}
}

// WithFallbackAdapter forces the software adapter, which is useful on machines without a GPU.
func WithFallbackAdapter(force bool) HostBuilderOption {
	return func(h *hostImpl) {
		h.forceFallback = force
	}
}

// WithLogger sets the logger used for surface diagnostics.
func WithLogger(logger *log.Logger) HostBuilderOption {
	return func(h *hostImpl) {
		if logger != nil {
			h.logger = logger
		}
	}
}
