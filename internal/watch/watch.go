// Package watch observes a set of named schedules and fires a callback
// on each off→on / on→off transition. Adapted from the teacher's
// internal/scheduler, which drives cron.Schedule.Next from a min-heap
// and a single timer goroutine; here "next fire time" is the next
// block-tree transition rather than a cron tick.
package watch

import (
	"container/heap"
	"sync"
	"time"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/cronbridge"
)

// State is the on/off state of a watched schedule.
type State int

const (
	Off State = iota
	On
)

func (s State) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

// entry represents a watched schedule in the heap.
type entry struct {
	name    string
	block   block.Block
	reg     block.Registry
	horizon time.Duration
	state   State
	nextAt  time.Time // time of the next transition, zero if none found
}

// entryHeap is a min-heap of entries ordered by nextAt (earliest first,
// zero times sort last since they carry no pending transition).
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].nextAt.IsZero() != h[j].nextAt.IsZero() {
		return h[j].nextAt.IsZero()
	}
	return h[i].nextAt.Before(h[j].nextAt)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// TransitionFunc is called when a watched schedule changes state.
type TransitionFunc func(name string, state State, at time.Time)

// Watcher manages schedule watching using a min-heap and a single
// timer goroutine, mirroring the teacher's scheduler loop shape.
type Watcher struct {
	mu      sync.Mutex
	heap    entryHeap
	byName  map[string]*entry
	timer   *time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
	fire    TransitionFunc
	reset   chan struct{}
	nowFunc func() time.Time
}

// NewWatcher creates a Watcher that calls fire on every transition.
func NewWatcher(fire TransitionFunc) *Watcher {
	return &Watcher{
		fire:    fire,
		byName:  make(map[string]*entry),
		done:    make(chan struct{}),
		reset:   make(chan struct{}, 1),
		nowFunc: time.Now,
	}
}

// Watch starts watching b under name, evaluated against reg, looking
// up to horizon ahead for the next transition. If name is already
// watched it is replaced.
func (w *Watcher) Watch(name string, b block.Block, reg block.Registry, horizon time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.removeLocked(name)

	now := w.nowFunc()
	state, err := currentState(b, reg, now)
	if err != nil {
		return err
	}

	e := &entry{name: name, block: b, reg: reg, horizon: horizon, state: state}
	w.recomputeLocked(e, now)
	w.byName[name] = e
	heap.Push(&w.heap, e)
	w.resetTimerLocked()
	return nil
}

// Unwatch stops watching the named schedule.
func (w *Watcher) Unwatch(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(name)
	w.resetTimerLocked()
}

func (w *Watcher) removeLocked(name string) {
	e, ok := w.byName[name]
	if !ok {
		return
	}
	delete(w.byName, name)
	for i, he := range w.heap {
		if he == e {
			heap.Remove(&w.heap, i)
			return
		}
	}
}

// State reports the last-known state of a watched schedule.
func (w *Watcher) State(name string) (State, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byName[name]
	if !ok {
		return Off, false
	}
	return e.state, true
}

// Start launches the watcher goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.timer = time.NewTimer(0)
	if !w.timer.Stop() {
		<-w.timer.C
	}
	w.resetTimerLocked()
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()
}

// Stop signals the watcher goroutine to exit and waits for it.
func (w *Watcher) Stop() {
	close(w.done)
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			w.mu.Lock()
			w.timer.Stop()
			w.mu.Unlock()
			return
		case <-w.reset:
			continue
		case <-w.timer.C:
			w.mu.Lock()
			if w.heap.Len() == 0 || w.heap[0].nextAt.IsZero() {
				w.mu.Unlock()
				continue
			}

			now := w.nowFunc()
			e := w.heap[0]

			if e.nextAt.After(now) {
				w.resetTimerLocked()
				w.mu.Unlock()
				continue
			}

			heap.Pop(&w.heap)
			newState := toggled(e.state)
			e.state = newState
			w.recomputeLocked(e, e.nextAt)
			heap.Push(&w.heap, e)
			w.resetTimerLocked()
			name := e.name
			at := e.nextAt
			w.mu.Unlock()

			w.fire(name, newState, at)
		}
	}
}

func toggled(s State) State {
	if s == On {
		return Off
	}
	return On
}

// recomputeLocked finds e's next transition strictly after from and
// stores it on the entry. Caller must hold w.mu.
func (w *Watcher) recomputeLocked(e *entry, from time.Time) {
	next, ok, err := cronbridge.NextTransition(e.block, e.reg, from.UnixMilli(), e.horizon.Milliseconds())
	if err != nil || !ok {
		e.nextAt = time.Time{}
		return
	}
	e.nextAt = time.UnixMilli(next).UTC()
}

func (w *Watcher) resetTimerLocked() {
	if w.timer == nil {
		return
	}
	w.timer.Stop()
	if w.heap.Len() == 0 || w.heap[0].nextAt.IsZero() {
		return
	}
	d := time.Until(w.heap[0].nextAt)
	if d < 0 {
		d = 0
	}
	w.timer.Reset(d)

	select {
	case w.reset <- struct{}{}:
	default:
	}
}

// currentState evaluates b at the single instant now to seed an
// entry's starting state before its first transition is computed.
func currentState(b block.Block, reg block.Registry, now time.Time) (State, error) {
	on, err := b.EvaluateTimestamp(now.UnixMilli(), reg)
	if err != nil {
		return Off, err
	}
	if on {
		return On, nil
	}
	return Off, nil
}
