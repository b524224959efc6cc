package batch

import (
	"github.com/Carmen-Shannon/oxy-iso/engine/renderer/material"
)

// Group is a run of instances sharing one material, issued as a single instanced draw call.
type Group struct {
	Material material.ID
	First    uint32
	Count    uint32
}

// Frame is the batcher's output for one frame: every accepted instance, contiguous and grouped by
// material, plus its encoded bytes. A Frame is never modified after Build returns it.
type Frame struct {
	Instances []GPUSpriteInstance
	Groups    []Group

	data []byte
}

// Bytes returns the encoded instance records, InstanceStride bytes each, in Instances order.
func (f *Frame) Bytes() []byte {
	if f == nil {
		return nil
	}
	return f.data
}

// Len returns the number of instances in the frame.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Instances)
}

// GroupInstances returns the instances of one group.
func (f *Frame) GroupInstances(g Group) []GPUSpriteInstance {
	return f.Instances[g.First : g.First+g.Count]
}
