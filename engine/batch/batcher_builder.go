package batch

import "log"

// BatcherBuilderOption is a functional option used to configure a Batcher during construction.
type BatcherBuilderOption func(*batcher)

// WithMaxInstances bounds the number of instances per frame. When exceeded, the instances farthest from
// the camera anchor are dropped and counted. 0 means unbounded.
//
// Parameters:
//   - n: the instance limit
//
// Returns:
//   - BatcherBuilderOption: a function that applies the limit
func WithMaxInstances(n int) BatcherBuilderOption {
	return func(b *batcher) {
		b.maxInstances = max(n, 0)
	}
}

// WithEncodeWorkers enables parallel instance encoding on a worker pool of n workers. 0 encodes inline.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - BatcherBuilderOption: a function that applies the worker count
func WithEncodeWorkers(n int) BatcherBuilderOption {
	return func(b *batcher) {
		b.encodeWorkers = max(n, 0)
	}
}

// WithEncodeChunk sets the number of instances encoded per worker task.
// Frames smaller than two chunks are always encoded inline.
//
// Parameters:
//   - n: instances per task
//
// Returns:
//   - BatcherBuilderOption: a function that applies the chunk size
func WithEncodeChunk(n int) BatcherBuilderOption {
	return func(b *batcher) {
		if n > 0 {
			b.encodeChunk = n
		}
	}
}

// WithMaxDiagnostics sets how many dropped-command diagnostics are logged per frame before the rest
// are only counted.
//
// Parameters:
//   - n: diagnostics per frame
//
// Returns:
//   - BatcherBuilderOption: a function that applies the limit
func WithMaxDiagnostics(n int) BatcherBuilderOption {
	return func(b *batcher) {
		b.maxDiagnostics = max(n, 0)
	}
}

// WithLogger routes diagnostics to l instead of the standard logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - BatcherBuilderOption: a function that applies the logger
func WithLogger(l *log.Logger) BatcherBuilderOption {
	return func(b *batcher) {
		if l != nil {
			b.logger = l
		}
	}
}
