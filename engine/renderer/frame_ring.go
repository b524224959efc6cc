package renderer

import (
	"github.com/Carmen-Shannon/oxy-iso/engine/batch"
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// minInstanceCapacity is the smallest instance buffer the ring allocates, in instances.
const minInstanceCapacity = 256

// ringSlot is one frame's worth of GPU memory: the camera uniform bind group and the instance buffer.
type ringSlot struct {
	camera    bind_group_provider.BindGroupProvider
	instances *wgpu.Buffer
	// capacity is the instance buffer size in instances.
	capacity int
}

// frameRing hands out slots round robin. A slot is reused only after every other slot has been used,
// and queue ordering guarantees the GPU has consumed earlier submissions reading it before a new
// WriteBuffer to it takes effect.
type frameRing struct {
	slots   []ringSlot
	next    int
	growths int
}

func newFrameRing(n int) *frameRing {
	if n < 1 {
		n = 1
	}
	return &frameRing{slots: make([]ringSlot, n)}
}

// advance returns the index of the slot the next frame writes and moves the ring forward.
func (r *frameRing) advance() int {
	i := r.next
	r.next = (r.next + 1) % len(r.slots)
	return i
}

// growCapacity returns the instance capacity a slot needs to hold needed instances: the current
// capacity doubled until it fits, never below minInstanceCapacity.
func growCapacity(current, needed int) int {
	c := max(current, minInstanceCapacity)
	for c < needed {
		c *= 2
	}
	return c
}

// ensureInstances makes sure slot i can hold n instances, replacing its buffer with a larger one when
// needed. The old buffer is released, never written past its end.
func (r *frameRing) ensureInstances(i, n int, alloc func(size uint64) (*wgpu.Buffer, error), release func(*wgpu.Buffer)) error {
	s := &r.slots[i]
	if s.capacity > 0 && s.capacity >= n {
		return nil
	}
	capacity := growCapacity(s.capacity, n)
	buf, err := alloc(uint64(capacity * batch.InstanceStride))
	if err != nil {
		return err
	}
	if s.instances != nil {
		release(s.instances)
	}
	if s.capacity > 0 {
		r.growths++
	}
	s.instances = buf
	s.capacity = capacity
	return nil
}

func (r *frameRing) release(releaseBuffer func(*wgpu.Buffer)) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.instances != nil {
			releaseBuffer(s.instances)
		}
		if s.camera != nil {
			s.camera.Release()
		}
		r.slots[i] = ringSlot{}
	}
}
