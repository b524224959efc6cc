package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestProfilerAggregatesPerInterval(t *testing.T) {
	var out bytes.Buffer
	p := NewProfiler(time.Second)
	p.SetLogger(log.New(&out, "", 0))
	start := p.lastTime

	p.Record(FrameSample{Instances: 100, DrawCalls: 2, Dropped: 1})
	if p.tickAt(start.Add(500 * time.Millisecond)) {
		t.Fatal("logged before the interval elapsed")
	}
	p.Record(FrameSample{Instances: 300, DrawCalls: 4, Culled: 7, Failed: true})
	if !p.tickAt(start.Add(time.Second)) {
		t.Fatal("did not log after the interval elapsed")
	}

	s := p.Last()
	if s.Frames != 2 || s.FPS != 2 {
		t.Errorf("frames=%d fps=%v", s.Frames, s.FPS)
	}
	if s.AvgInstances != 200 || s.AvgDrawCalls != 3 || s.PeakInstances != 300 {
		t.Errorf("summary = %+v", s)
	}
	if s.Dropped != 1 || s.Culled != 7 || s.Failed != 1 {
		t.Errorf("summary = %+v", s)
	}
	if !strings.HasPrefix(out.String(), "[Profiler] FPS: 2.00") {
		t.Errorf("log line = %q", out.String())
	}

	p.Record(FrameSample{Instances: 5})
	p.tickAt(start.Add(2 * time.Second))
	if got := p.Last(); got.Dropped != 0 || got.PeakInstances != 5 {
		t.Errorf("counters not reset between intervals: %+v", got)
	}
}

func TestNewProfilerDefaultInterval(t *testing.T) {
	if p := NewProfiler(0); p.updateInterval != time.Second {
		t.Errorf("interval = %v", p.updateInterval)
	}
}
