package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite is one queued upload into a buffer bound on a provider, such as the per-slot camera uniform.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// UniformWrite builds a write that replaces a uniform buffer's contents from offset 0.
func UniformWrite(provider BindGroupProvider, binding int, data []byte) BufferWrite {
	return BufferWrite{Provider: provider, Binding: binding, Data: data}
}

// Target returns the buffer the write lands in. ok is false when there is nothing to upload or the
// binding holds no buffer, and the write should be skipped.
func (w BufferWrite) Target() (buf *wgpu.Buffer, ok bool) {
	if w.Provider == nil || len(w.Data) == 0 {
		return nil, false
	}
	buf = w.Provider.Buffer(w.Binding)
	return buf, buf != nil
}
