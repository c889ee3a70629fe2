package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// pollInterval is how often waitFor asks the queue for progress.
const pollInterval = 100 * time.Microsecond

// submission holds the objects a submitted list needs until the queue
// reports its index complete.
type submission struct {
	index      uint64
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
	uniforms   []hal.Buffer
}

func (d *Device) track(s submission) {
	d.inflight = append(d.inflight, s)
}

// waitFor polls the queue until index completes or timeout elapses.
func (d *Device) waitFor(index uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for d.queue.PollCompleted() < index {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
	return true
}

// reclaim frees the objects of every completed submission.
func (d *Device) reclaim() {
	done := d.queue.PollCompleted()
	kept := d.inflight[:0]
	for _, s := range d.inflight {
		if s.index > done {
			kept = append(kept, s)
			continue
		}
		d.free(s)
	}
	clear(d.inflight[len(kept):])
	d.inflight = kept
}

func (d *Device) free(s submission) {
	for _, bg := range s.bindGroups {
		d.device.DestroyBindGroup(bg)
	}
	for _, u := range s.uniforms {
		d.device.DestroyBuffer(u)
	}
	d.device.FreeCommandBuffer(s.cmdBuf)
}

// InFlight returns the number of submissions whose objects have not been
// freed yet.
func (d *Device) InFlight() int {
	return len(d.inflight)
}

// Flush waits for the device to go idle and frees every in-flight
// submission. Hosts call it before destroying the hal device.
func (d *Device) Flush() error {
	if len(d.inflight) == 0 {
		return nil
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	for _, s := range d.inflight {
		d.free(s)
	}
	clear(d.inflight)
	d.inflight = d.inflight[:0]
	return nil
}
