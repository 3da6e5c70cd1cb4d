package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/utils/debounce"
)

type call struct {
	key   string
	value string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) record(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{key: key, value: value})
}

func (r *recorder) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

const delay = 30 * time.Millisecond

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	rec := &recorder{}
	d := debounce.New(delay, rec.record)
	defer d.Close()

	for _, v := range []string{"c", "ca", "cal", "call", "called"} {
		d.Trigger("sub-1", v)
	}

	time.Sleep(delay * 5)

	calls := rec.snapshot()
	gt.A(t, calls).Length(1)
	gt.V(t, calls[0]).Equal(call{key: "sub-1", value: "called"})
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	rec := &recorder{}
	d := debounce.New(delay, rec.record)
	defer d.Close()

	d.Trigger("sub-1", "a")
	d.Trigger("sub-2", "b")

	time.Sleep(delay * 5)

	calls := rec.snapshot()
	gt.A(t, calls).Length(2)
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder{}
	d := debounce.New(time.Hour, rec.record)
	defer d.Close()

	d.Trigger("sub-1", "draft")
	gt.B(t, d.Pending("sub-1")).True()

	gt.B(t, d.Flush("sub-1")).True()
	gt.B(t, d.Pending("sub-1")).False()
	gt.A(t, rec.snapshot()).Length(1)

	// nothing pending any more
	gt.B(t, d.Flush("sub-1")).False()
	gt.A(t, rec.snapshot()).Length(1)
}

func TestDebouncer_CancelNeverFires(t *testing.T) {
	rec := &recorder{}
	d := debounce.New(delay, rec.record)
	defer d.Close()

	d.Trigger("sub-1", "stale")
	d.Cancel("sub-1")

	time.Sleep(delay * 5)
	gt.A(t, rec.snapshot()).Length(0)
}

func TestDebouncer_CloseNeverFires(t *testing.T) {
	rec := &recorder{}
	d := debounce.New(delay, rec.record)

	d.Trigger("sub-1", "stale")
	d.Close()
	d.Trigger("sub-2", "after close")

	time.Sleep(delay * 5)
	gt.A(t, rec.snapshot()).Length(0)
}

func TestDebouncer_FlushWaitsForRunningCallback(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var delivered sync.WaitGroup
	delivered.Add(1)

	d := debounce.New(time.Millisecond, func(key, value string) {
		close(started)
		<-release
		delivered.Done()
	})
	defer d.Close()

	d.Trigger("sub-1", "phoned")
	<-started

	done := make(chan bool)
	go func() { done <- d.Flush("sub-1") }()

	select {
	case <-done:
		t.Fatal("Flush returned while the callback was still running")
	case <-time.After(delay):
	}

	close(release)
	gt.B(t, <-done).False()
	delivered.Wait()
}
