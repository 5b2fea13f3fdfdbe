package notifier

import (
	"sync/atomic"

	"github.com/jmylchreest/batnag/internal/battery"
)

// fakeSource is a battery source whose values can change while a module runs.
type fakeSource struct {
	status   atomic.Int32
	capacity atomic.Uint32
}

func newFakeSource(status battery.Status, capacity uint32) *fakeSource {
	s := &fakeSource{}
	s.set(status, capacity)
	return s
}

func (s *fakeSource) set(status battery.Status, capacity uint32) {
	s.status.Store(int32(status))
	s.capacity.Store(capacity)
}

func (s *fakeSource) Status() battery.Status { return battery.Status(s.status.Load()) }
func (s *fakeSource) Capacity() uint32       { return s.capacity.Load() }
